// Package bridge carries view commands from a scripting layer to a
// uimanager.Manager.
//
// Commands arrive in batches. A Router posts each batch onto the UI thread
// as a single task, so batches from one connection are applied in the order
// they were received. Query results travel back through a ResultSink.
package bridge

// Command operations.
const (
	OpAddRootView         = "addRootView"
	OpCreateView          = "createView"
	OpCreatePreView       = "createPreView"
	OpUpdateView          = "updateView"
	OpUpdateLayout        = "updateLayout"
	OpUpdateExtra         = "updateExtra"
	OpMove                = "move"
	OpAddChild            = "addChild"
	OpDeleteChild         = "deleteChild"
	OpReplaceID           = "replaceID"
	OpDispatchUIFunction  = "dispatchUIFunction"
	OpBatchStart          = "batchStart"
	OpBatchComplete       = "batchComplete"
	OpManageChildComplete = "manageChildComplete"
	OpMeasureInWindow     = "measureInWindow"
	OpDeleteRootView      = "deleteRootView"
	OpDestroy             = "destroy"
)

// Command is one operation on the native tree. Which fields are read
// depends on Op.
type Command struct {
	Op        string         `json:"op" yaml:"op"`
	ID        int            `json:"id,omitempty" yaml:"id,omitempty"`
	PID       int            `json:"pid,omitempty" yaml:"pid,omitempty"`
	ToID      int            `json:"toId,omitempty" yaml:"toId,omitempty"`
	NewID     int            `json:"newId,omitempty" yaml:"newId,omitempty"`
	Index     *int           `json:"index,omitempty" yaml:"index,omitempty"`
	ClassName string         `json:"className,omitempty" yaml:"className,omitempty"`
	RootID    int            `json:"rootId,omitempty" yaml:"rootId,omitempty"`
	Props     map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Args      []any          `json:"args,omitempty" yaml:"args,omitempty"`
	Extra     any            `json:"extra,omitempty" yaml:"extra,omitempty"`

	// Layout frame for updateLayout, in pixels.
	X      int `json:"x,omitempty" yaml:"x,omitempty"`
	Y      int `json:"y,omitempty" yaml:"y,omitempty"`
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`

	// CallID correlates a query with its Result. A dispatchUIFunction
	// without one is fire and forget.
	CallID string `json:"callId,omitempty" yaml:"callId,omitempty"`
}

// index returns the child index, or -1 (append) when unset.
func (c Command) index() int {
	if c.Index == nil {
		return -1
	}
	return *c.Index
}

// Batch is an ordered group of commands applied as one UI-thread task.
type Batch struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Commands []Command `json:"commands" yaml:"commands"`
}

// Result answers a query command.
type Result struct {
	CallID string `json:"callId"`
	OK     bool   `json:"ok"`
	Value  any    `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Index returns a pointer to i for building commands in code.
func Index(i int) *int { return &i }
