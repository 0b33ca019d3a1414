package generator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtractTaskClient(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "TaskClient", "index.js"))
	require.NoError(t, err)

	f := parseSource(t, string(src))
	model, err := NewExtractor(nil, nil).Extract(f)
	require.NoError(t, err)

	assert.Equal(t, []EventRecord{
		{
			Name:        "TaskRemoved",
			Description: "Emitted when a task is removed",
			Args: []FieldRecord{
				{Name: "taskId", Type: "number", Description: "The task ID"},
				{Name: "reason", Type: "string", Description: "Why it was removed"},
			},
		},
		{
			Name:        "TaskAdded",
			Description: "Emitted when a task is added",
			Args: []FieldRecord{
				{Name: "taskId", Type: "number", Description: "The task ID"},
			},
		},
	}, model.Events)

	require.Len(t, model.Queries, 1)
	assert.Equal(t, OperationRecord{
		Kind:        KindQuery,
		Name:        "getTask",
		Description: "Gets the task with the given ID",
		Args: []FieldRecord{
			{Name: "taskId", Type: "number", Description: "The task ID"},
		},
		Returns: []FieldRecord{
			{Name: "specificationHash", Type: "IPFS hash", Description: "The [task spec](docs-tasks.html#specification) hash"},
			{Name: "dueDate", Type: "Date (optional)", Description: "When the task is due", Optional: true},
			{Name: "manager", Type: "Address (optional)", Description: "The task manager", Optional: true},
		},
	}, model.Queries[0])

	require.Len(t, model.Transactions, 1)
	assert.Equal(t, KindTransaction, model.Transactions[0].Kind)
	assert.Equal(t, "removeTask", model.Transactions[0].Name)
	assert.Equal(t, "Removes a task", model.Transactions[0].Description)
	assert.Equal(t, []string{"TaskAdded", "TaskRemoved"}, model.Transactions[0].Events)
	assert.Nil(t, model.Transactions[0].Returns)

	require.Len(t, model.MultisigTransactions, 1)
	multisig := model.MultisigTransactions[0]
	assert.Equal(t, KindMultisigTransaction, multisig.Kind)
	assert.Equal(t, "setTaskDueDate", multisig.Name)
	assert.Equal(t, []FieldRecord{
		{Name: "taskId", Type: "number", Description: "The task ID"},
		{Name: "dueDate", Type: "Date", Description: "The new due date"},
	}, multisig.Args)
	assert.Equal(t, []string{"TaskAdded"}, multisig.Events)
}

func TestExtractEventNames(t *testing.T) {
	src := `// Top-level event
type EventAlias = Event<{ id: number }>;

type Client = {
  // Nested event
  foo: Event<{ id: number }>,
  'quoted': Event<{}>,
};
`
	model, err := NewExtractor(nil, nil).Extract(parseSource(t, src))
	require.NoError(t, err)

	require.Len(t, model.Events, 3)
	assert.Equal(t, "EventAlias", model.Events[0].Name)
	assert.Equal(t, "Top-level event", model.Events[0].Description)
	assert.Equal(t, "foo", model.Events[1].Name)
	assert.Equal(t, "Nested event", model.Events[1].Description)
	assert.Equal(t, "quoted", model.Events[2].Name)
	assert.Empty(t, model.Events[2].Args)
}

func TestExtractShapes(t *testing.T) {
	src := `type Client = {
  byRef: Caller<Params, Result, Client>,
  noEvents: Sender<{ amount: BigNumber }, Events>,
  empty: Caller<{}, {}>,
};
`
	model, err := NewExtractor(nil, nil).Extract(parseSource(t, src))
	require.NoError(t, err)

	require.Len(t, model.Queries, 2)
	assert.Nil(t, model.Queries[0].Args)
	assert.Nil(t, model.Queries[0].Returns)
	assert.Empty(t, model.Queries[1].Args)
	assert.Empty(t, model.Queries[1].Returns)

	require.Len(t, model.Transactions, 1)
	assert.Equal(t, []FieldRecord{{Name: "amount", Type: "BigNumber"}}, model.Transactions[0].Args)
	assert.Nil(t, model.Transactions[0].Events)
}

func TestExtractTooFewTypeArguments(t *testing.T) {
	src := `type Client = {
  broken: Caller<{ a: number }>,
};
`
	_, err := NewExtractor(nil, nil).Extract(parseSource(t, src))

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Msg, `"broken"`)
}

func TestExtractUnknownType(t *testing.T) {
	src := `type Client = {
  get: Caller<{ widget: Widget }, {}>,
};
`
	_, err := NewExtractor(nil, nil).Extract(parseSource(t, src))

	var unknown *UnknownTypeAnnotationError
	require.True(t, errors.As(err, &unknown), "expected UnknownTypeAnnotationError, got %v", err)
	assert.Equal(t, "Widget", unknown.Name)
	assert.Contains(t, err.Error(), `property "widget"`)
}

func TestExtractSkipsIndirectMarkers(t *testing.T) {
	src := `type Client = {
  many: Array<Caller<{}, {}>>,
};
`
	core, logs := observer.New(zapcore.WarnLevel)
	model, err := NewExtractor(nil, zap.New(core)).Extract(parseSource(t, src))
	require.NoError(t, err)

	assert.Empty(t, model.Queries)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Caller", logs.All()[0].ContextMap()["marker"])
}

func TestExtractCustomCommentMatchers(t *testing.T) {
	src := `type Client = {
  get: Caller<{
    // The id
    id: number,
  }, {}>, // Gets it
};
`
	model, err := NewExtractor(nil, nil, WithCommentMatchers(SameLine{}, Precedes{})).Extract(parseSource(t, src))
	require.NoError(t, err)

	require.Len(t, model.Queries, 1)
	assert.Equal(t, "", model.Queries[0].Description)
	assert.Equal(t, "The id", model.Queries[0].Args[0].Description)
}

func TestExtractNestedPropertyName(t *testing.T) {
	src := `type Client = {
  category: {
    nested: {
      foo: Caller<{ id: number }, { ok: boolean }>,
    },
  },
};
`
	model, err := NewExtractor(nil, nil).Extract(parseSource(t, src))
	require.NoError(t, err)

	require.Len(t, model.Queries, 1)
	assert.Equal(t, "foo", model.Queries[0].Name)
}
