package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	vberrors "github.com/go-drift/viewbridge/pkg/errors"
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view"
)

const defaultTracerName = "viewbridge"

// ResultSink receives query results. Deliver runs on the UI thread.
type ResultSink interface {
	Deliver(r Result)
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(r Result)

// Deliver implements ResultSink.
func (f ResultSinkFunc) Deliver(r Result) { f(r) }

// RootFactory builds the root surface for addRootView.
type RootFactory func(id int) view.Group

// Router applies batches to a manager.
type Router struct {
	manager *uimanager.Manager
	sink    ResultSink
	roots   RootFactory
	tracer  trace.Tracer
	logger  *slog.Logger
	handler vberrors.Handler
	metrics *metrics
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithResultSink sets the sink used by Apply.
func WithResultSink(sink ResultSink) RouterOption {
	return func(r *Router) {
		r.sink = sink
	}
}

// WithRootFactory enables addRootView.
func WithRootFactory(f RootFactory) RouterOption {
	return func(r *Router) {
		r.roots = f
	}
}

// WithTracerName sets the tracer name. The default is "viewbridge".
func WithTracerName(name string) RouterOption {
	return func(r *Router) {
		r.tracer = otel.Tracer(name)
	}
}

// WithRouterLogger sets the logger.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRouterErrorHandler routes rejected commands to h instead of the
// global handler.
func WithRouterErrorHandler(h vberrors.Handler) RouterOption {
	return func(r *Router) {
		r.handler = h
	}
}

// WithRouterMetrics registers the router's collectors with reg.
func WithRouterMetrics(reg prometheus.Registerer) RouterOption {
	return func(r *Router) {
		if reg != nil {
			r.metrics = newMetrics(reg)
		}
	}
}

// NewRouter creates a router for m.
func NewRouter(m *uimanager.Manager, opts ...RouterOption) *Router {
	r := &Router{
		manager: m,
		tracer:  otel.Tracer(defaultTracerName),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Apply posts batch to the UI thread with the router's sink. It returns
// the batch id, generated when the batch has none.
func (r *Router) Apply(ctx context.Context, batch Batch) (string, error) {
	return r.ApplyTo(ctx, batch, r.sink)
}

// ApplyTo is Apply with an explicit result sink. The batch is applied as a
// single task. ctx only parents the batch span; a posted batch always runs
// to completion.
func (r *Router) ApplyTo(ctx context.Context, batch Batch, sink ResultSink) (string, error) {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	_, span := r.tracer.Start(ctx, "viewbridge.batch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("viewbridge.batch_id", batch.ID),
			attribute.Int("viewbridge.command_count", len(batch.Commands)),
		),
	)
	queued := time.Now()

	posted := r.manager.Post(func(m *uimanager.Manager) {
		defer span.End()

		start := time.Now()
		failed := r.applyBatch(m, batch, sink)
		r.metrics.batch(start.Sub(queued), time.Since(start))

		span.SetAttributes(attribute.Int("viewbridge.failed_commands", failed))
		if failed > 0 {
			span.SetStatus(codes.Error, fmt.Sprintf("%d commands rejected", failed))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
	if !posted {
		span.RecordError(ErrClosed)
		span.SetStatus(codes.Error, ErrClosed.Error())
		span.End()
		return batch.ID, ErrClosed
	}
	return batch.ID, nil
}

func (r *Router) applyBatch(m *uimanager.Manager, batch Batch, sink ResultSink) int {
	failed := 0
	for i, cmd := range batch.Commands {
		if err := r.applyCommand(m, cmd, sink); err != nil {
			failed++
			r.metrics.rejected(cmd.Op)
			vberrors.ReportTo(r.handler, &vberrors.UIError{
				Op:       "bridge.Router",
				Kind:     vberrors.KindBridge,
				ViewID:   cmd.ID,
				NonFatal: true,
				Err:      fmt.Errorf("batch %s command %d (%s): %w", batch.ID, i, cmd.Op, err),
			})
			if cmd.CallID != "" {
				deliver(sink, Result{CallID: cmd.CallID, Error: err.Error()})
			}
		}
	}
	r.logger.Debug("batch applied", "batch", batch.ID, "commands", len(batch.Commands), "failed", failed)
	return failed
}

func (r *Router) applyCommand(m *uimanager.Manager, cmd Command, sink ResultSink) error {
	switch cmd.Op {
	case OpAddRootView:
		if r.roots == nil {
			return ErrNoRootFactory
		}
		m.AddRootView(r.roots(cmd.ID))
	case OpCreateView:
		if err := requireController(m, cmd.ClassName); err != nil {
			return err
		}
		m.CreateView(m.Registry().RootView(cmd.RootID), cmd.ID, cmd.ClassName, cmd.Props)
	case OpCreatePreView:
		if err := requireController(m, cmd.ClassName); err != nil {
			return err
		}
		m.CreatePreView(m.Registry().RootView(cmd.RootID), cmd.ID, cmd.ClassName, cmd.Props)
	case OpUpdateView:
		m.UpdateView(cmd.ID, cmd.ClassName, cmd.Props)
	case OpUpdateLayout:
		m.UpdateLayout(cmd.ClassName, cmd.ID, cmd.X, cmd.Y, cmd.Width, cmd.Height)
	case OpUpdateExtra:
		m.UpdateExtra(cmd.ID, cmd.ClassName, cmd.Extra)
	case OpMove:
		m.Move(cmd.ID, cmd.ToID, cmd.index())
	case OpAddChild:
		m.AddChild(cmd.PID, cmd.ID, cmd.index())
	case OpDeleteChild:
		m.DeleteChildAt(cmd.PID, cmd.ID, cmd.index())
	case OpReplaceID:
		m.ReplaceID(cmd.ID, cmd.NewID)
	case OpDispatchUIFunction:
		var p uimanager.Promise
		if cmd.CallID != "" {
			p = promise(cmd.CallID, sink)
		}
		m.DispatchUIFunction(cmd.ID, cmd.ClassName, cmd.Name, cmd.Args, p)
	case OpBatchStart:
		m.OnBatchStart(cmd.ClassName, cmd.ID)
	case OpBatchComplete:
		m.OnBatchComplete(cmd.ClassName, cmd.ID)
	case OpManageChildComplete:
		m.OnManageChildComplete(cmd.ClassName, cmd.ID)
	case OpMeasureInWindow:
		m.MeasureInWindow(cmd.ID, promise(cmd.CallID, sink))
	case OpDeleteRootView:
		m.DeleteRootView(cmd.ID)
	case OpDestroy:
		m.Destroy()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}
	return nil
}

// requireController rejects class names without a controller. The manager
// treats those as fatal; over the bridge they are bad input.
func requireController(m *uimanager.Manager, className string) error {
	_, err := m.Registry().ViewController(className)
	return err
}

func promise(callID string, sink ResultSink) uimanager.Promise {
	return uimanager.NewFuncPromise(func(res uimanager.Result) {
		out := Result{CallID: callID, OK: res.Err == nil, Value: res.Value}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		deliver(sink, out)
	})
}

func deliver(sink ResultSink, r Result) {
	if sink != nil {
		sink.Deliver(r)
	}
}
