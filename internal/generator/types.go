package generator

// OperationKind distinguishes the three operation markers.
type OperationKind int

const (
	// KindQuery is a read-only call declared with the Caller marker.
	KindQuery OperationKind = iota
	// KindTransaction is a state-changing call declared with the Sender marker.
	KindTransaction
	// KindMultisigTransaction is a call declared with the MultisigSender marker.
	KindMultisigTransaction
)

func (k OperationKind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindTransaction:
		return "transaction"
	case KindMultisigTransaction:
		return "multisig-transaction"
	default:
		return "unknown"
	}
}

// MarshalText lets model dumps show the kind by name.
func (k OperationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FieldRecord is one documented argument, return value or event property
type FieldRecord struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// OperationRecord is a query, transaction or multisig transaction.
// Returns is only filled for queries, Events only for the other two kinds.
type OperationRecord struct {
	Kind        OperationKind `json:"kind" yaml:"kind"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Args        []FieldRecord `json:"args,omitempty" yaml:"args,omitempty"`
	Returns     []FieldRecord `json:"returns,omitempty" yaml:"returns,omitempty"`
	Events      []string      `json:"events,omitempty" yaml:"events,omitempty"`
}

// EventRecord is an event definition
type EventRecord struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Args        []FieldRecord `json:"args,omitempty" yaml:"args,omitempty"`
}

// DocumentModel holds everything extracted from one module.
type DocumentModel struct {
	Queries              []OperationRecord `json:"queries" yaml:"queries"`
	Transactions         []OperationRecord `json:"transactions" yaml:"transactions"`
	MultisigTransactions []OperationRecord `json:"multisigTransactions" yaml:"multisigTransactions"`
	Events               []EventRecord     `json:"events" yaml:"events"`
}

// merge appends other's records after m's, keeping source order.
func (m DocumentModel) merge(other DocumentModel) DocumentModel {
	m.Queries = append(m.Queries, other.Queries...)
	m.Transactions = append(m.Transactions, other.Transactions...)
	m.MultisigTransactions = append(m.MultisigTransactions, other.MultisigTransactions...)
	m.Events = append(m.Events, other.Events...)
	return m
}

func (m DocumentModel) addOperation(op OperationRecord) DocumentModel {
	switch op.Kind {
	case KindQuery:
		m.Queries = append(m.Queries, op)
	case KindTransaction:
		m.Transactions = append(m.Transactions, op)
	case KindMultisigTransaction:
		m.MultisigTransactions = append(m.MultisigTransactions, op)
	}
	return m
}

// findEvent returns the event named name, if any.
func findEvent(events []EventRecord, name string) (EventRecord, bool) {
	for _, ev := range events {
		if ev.Name == name {
			return ev, true
		}
	}
	return EventRecord{}, false
}
