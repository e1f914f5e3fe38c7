package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, t *models.Tick) error
}

// TickPipeline sits between the price stream and the position monitor.
// It validates, throttles per symbol, and buffers when downstream is
// temporarily unavailable, so a burst of ticks never stalls the reader.
type TickPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.Tick
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-symbol last accepted time
}

type PipelineOption func(*TickPipeline)

// WithMaxRPS sets the max ticks per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewTickPipeline creates a new pipeline.
func NewTickPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   10,   // default throttle per symbol
		bufSize:  1000, // default buffer
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Tick, p.bufSize)
	return p
}

// Start launches background flushing of buffered ticks.
func (p *TickPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case t := <-p.bufCh:
				if t == nil {
					continue
				}
				if err := p.proc.Process(ctx, t); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- t:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *TickPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards a tick downstream, buffering on
// errors.
func (p *TickPipeline) Process(ctx context.Context, t *models.Tick) error {
	start := time.Now()
	if err := validateTick(t); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(t.Symbol, start) {
		// throttled; drop silently
		return nil
	}

	if err := p.proc.Process(ctx, t); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- t:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateTick(t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if t.Price <= 0 {
		return fmt.Errorf("price not positive")
	}
	return nil
}

func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[symbol] = now
		return true
	}
	return false
}
