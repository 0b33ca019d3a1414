package generator

import (
	"fmt"
	"strings"
	"text/template"
)

const queriesTemplate = `
## Callers

**All callers return promises which resolve to an object containing the given return values.** For a reference please check [here](/colonyjs/docs-contractclient/#callers).
{{range .}}
### ` + "`{{.Name}}.call({{args .Args false}})`" + `

{{.Description}}
{{if .Args}}
**Arguments**

{{end}}{{table "Argument" .Args}}

**Returns**

A promise which resolves to an object containing the following properties:

{{table "Return value" .Returns}}
{{end}}`

const transactionsTemplate = `
## Senders

**All senders return an instance of a ` + "`ContractResponse`" + `.** Every ` + "`send()`" + ` method takes an ` + "`options`" + ` object as the second argument. For a reference please check [here](/colonyjs/docs-contractclient/#senders).{{range .}}
### ` + "`{{.Name}}.send({{args .Args true}})`" + `

{{.Description}}
{{if .Args}}
**Arguments**

{{end}}{{table "Argument" .Args}}

**Returns**

An instance of a ` + "`ContractResponse`" + `{{if .Events}} which will eventually receive the following event data:{{end}}

{{table "Event data" .EventData}}
{{end}}`

const multisigTemplate = `
## Task MultiSig

**All MultiSig functions return an instance of a ` + "`MultiSigOperation`" + `.** For a reference please check [here](/colonyjs/docs-multisignature-transactions/).{{range .}}
### ` + "`{{.Name}}.startOperation({{args .Args true}})`" + `

{{.Description}}
{{if .Args}}
**Arguments**

{{end}}{{table "Argument" .Args}}

**Returns**

An instance of a ` + "`MultiSigOperation`" + `{{if .Events}} whose sender will eventually receive the following event data:{{end}}

{{table "Event Data" .EventData}}
{{end}}`

const eventsTemplate = `
## Events

Refer to the ` + "`ContractEvent`" + ` class [here](/colonyjs/docs-contractclient/#events) to interact with these events.

{{range .}}
### [events.{{.Name}}.addListener(({{args .Args false}}) => { /* ... */ })](#events-{{.Name}})

{{.Description}}
{{if .Args}}
**Arguments**

{{end}}{{table "Argument" .Args}}

{{end}}`

var sectionTemplates = template.Must(template.New("sections").Funcs(template.FuncMap{
	"args":  printArgs,
	"table": printTable,
}).Parse(`{{define "queries"}}` + queriesTemplate + `{{end}}` +
	`{{define "transactions"}}` + transactionsTemplate + `{{end}}` +
	`{{define "multisig"}}` + multisigTemplate + `{{end}}` +
	`{{define "events"}}` + eventsTemplate + `{{end}}`))

// Sections holds the four rendered fragments of one module.
type Sections struct {
	Queries              string
	Transactions         string
	MultisigTransactions string
	Events               string
}

// operationView is an operation plus its resolved event data.
type operationView struct {
	OperationRecord
	EventData []FieldRecord
}

// Renderer turns a DocumentModel into Markdown fragments.
type Renderer struct {
	dedup DedupMode
}

// NewRenderer creates a renderer that resolves event data with dedup.
func NewRenderer(dedup DedupMode) *Renderer {
	return &Renderer{dedup: dedup}
}

// Render renders all four sections of model.
func (r *Renderer) Render(model DocumentModel) (Sections, error) {
	var (
		s   Sections
		err error
	)
	if s.Queries, err = r.RenderQueries(model.Queries); err != nil {
		return Sections{}, err
	}
	if s.Transactions, err = r.RenderTransactions(model.Transactions, model.Events); err != nil {
		return Sections{}, err
	}
	if s.MultisigTransactions, err = r.RenderMultisigTransactions(model.MultisigTransactions, model.Events); err != nil {
		return Sections{}, err
	}
	if s.Events, err = r.RenderEvents(model.Events); err != nil {
		return Sections{}, err
	}
	return s, nil
}

// RenderQueries renders the Callers section.
func (r *Renderer) RenderQueries(ops []OperationRecord) (string, error) {
	if len(ops) == 0 {
		return "", nil
	}
	return execute("queries", ops)
}

// RenderTransactions renders the Senders section.
func (r *Renderer) RenderTransactions(ops []OperationRecord, events []EventRecord) (string, error) {
	if len(ops) == 0 {
		return "", nil
	}
	views, err := r.withEventData(ops, events)
	if err != nil {
		return "", err
	}
	return execute("transactions", views)
}

// RenderMultisigTransactions renders the Task MultiSig section.
func (r *Renderer) RenderMultisigTransactions(ops []OperationRecord, events []EventRecord) (string, error) {
	if len(ops) == 0 {
		return "", nil
	}
	views, err := r.withEventData(ops, events)
	if err != nil {
		return "", err
	}
	return execute("multisig", views)
}

// RenderEvents renders the Events section.
func (r *Renderer) RenderEvents(events []EventRecord) (string, error) {
	if len(events) == 0 {
		return "", nil
	}
	return execute("events", events)
}

func (r *Renderer) withEventData(ops []OperationRecord, events []EventRecord) ([]operationView, error) {
	views := make([]operationView, 0, len(ops))
	for _, op := range ops {
		data, err := ResolveEventProps(op.Name, op.Events, events, r.dedup)
		if err != nil {
			return nil, err
		}
		views = append(views, operationView{OperationRecord: op, EventData: data})
	}
	return views, nil
}

func execute(name string, data any) (string, error) {
	var sb strings.Builder
	if err := sectionTemplates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return sb.String(), nil
}

// printArgs renders the destructured argument list of a call signature.
func printArgs(args []FieldRecord, withOptions bool) string {
	if len(args) == 0 {
		if withOptions {
			return "options"
		}
		return ""
	}
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = arg.Name
	}
	out := "{ " + strings.Join(names, ", ") + " }"
	if withOptions {
		out += ", options"
	}
	return out
}

// printTable renders fields as a three-column table, or "" when empty.
func printTable(title string, fields []FieldRecord) string {
	if len(fields) == 0 {
		return ""
	}
	rows := make([]string, 0, len(fields)+2)
	rows = append(rows, "|"+title+"|Type|Description|", "|---|---|---|")
	for _, f := range fields {
		rows = append(rows, "|"+tableCell(f.Name)+"|"+tableCell(f.Type)+"|"+tableCell(f.Description)+"|")
	}
	return strings.Join(rows, "\n")
}

// tableCell keeps a value on one line and escapes column separators.
func tableCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
