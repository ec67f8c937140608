// Package processor subscribes to chain events and feeds them through the
// registered verification handlers.
package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	rpccoretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"

	"crosschain-verification/internal/config"
	"crosschain-verification/internal/events"
	"crosschain-verification/internal/heights"
	"crosschain-verification/internal/logger"
	"crosschain-verification/internal/nodeinfo"
	"crosschain-verification/internal/tui"
	"crosschain-verification/internal/voting"
)

const (
	// UpdateChannelBufferSize sizes the TUI update channel.
	UpdateChannelBufferSize = 64
	// TUICloseDelay gives the TUI a moment to drain before shutdown.
	TUICloseDelay = 100 * time.Millisecond

	subscriberName = "crosschain-verifier"
)

// EventHandler consumes one observed event and may produce outbound contract
// messages. Handlers must treat events that do not concern them as an empty
// result, not an error.
type EventHandler interface {
	Handle(ctx context.Context, ev events.Event) ([]voting.MsgExecuteContract, error)
}

// Submitter takes custody of outbound messages produced by handlers.
type Submitter interface {
	Submit(ctx context.Context, msgs []voting.MsgExecuteContract) error
}

// Processor drives the subscribe/dispatch loop. Handler failures are logged
// and dropped: a poll event is processed at most once per observation, and
// skips are never retried.
type Processor struct {
	cfg      config.Config
	client   *rpchttp.HTTP
	handlers []EventHandler
	submit   Submitter
	heights  *heights.Cell
	info     *nodeinfo.Resolver
	updates  chan<- interface{}
	log      *logger.Logger

	lastBlockTime   time.Time
	lastBlockTimeMu sync.RWMutex

	eventsSeen    atomic.Uint64
	votesCast     atomic.Uint64
	handlerErrors atomic.Uint64
}

// New creates a processor. The updates channel may be nil when no TUI is
// attached; the submitter must not be nil.
func New(cfg config.Config, handlers []EventHandler, submit Submitter, cell *heights.Cell, updates chan<- interface{}, log *logger.Logger) (*Processor, error) {
	if submit == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	c, err := rpchttp.New(cfg.RPCURL, cfg.WSURL())
	if err != nil {
		return nil, err
	}
	return &Processor{
		cfg:      cfg,
		client:   c,
		handlers: handlers,
		submit:   submit,
		heights:  cell,
		info:     nodeinfo.NewResolver(cfg.RPCURL),
		updates:  updates,
		log:      log,
	}, nil
}

// Run keeps the subscribe/dispatch loop alive, reconnecting on failure, until
// the context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := p.runLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return nil // Context cancelled, normal shutdown
			}
			// Only log actual errors, not planned reconnects
			if !strings.Contains(err.Error(), "reconnect:") {
				p.log.Printf("run loop error: %v, reconnecting...", err)
			}
			time.Sleep(3 * time.Second) // Brief pause before reconnecting
		}
	}
}

func (p *Processor) runLoop(ctx context.Context) error {
	// Cancelling loopCtx on exit stops the goroutines of this connection
	// cycle before the next one starts.
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := p.cleanupClient(loopCtx); err != nil {
		p.log.Printf("warning: error during client cleanup: %v", err)
	}

	if err := p.initClient(); err != nil {
		return err
	}

	subs, err := p.subscribe(loopCtx)
	if err != nil {
		return err
	}

	p.updateLastBlockTime()
	p.startEventHandlers(loopCtx, subs)

	return p.watchdogLoop(loopCtx)
}

// cleanupClient stops and cleans up existing client
func (p *Processor) cleanupClient(ctx context.Context) error {
	if p.client == nil {
		return nil
	}

	unsubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_ = p.client.UnsubscribeAll(unsubCtx, subscriberName)
	_ = p.client.Stop()
	p.client = nil

	time.Sleep(500 * time.Millisecond) // Brief pause for cleanup
	return nil
}

// initClient creates and starts a new RPC client
func (p *Processor) initClient() error {
	client, err := rpchttp.New(p.cfg.RPCURL, p.cfg.WSURL())
	if err != nil {
		return fmt.Errorf("create rpc client: %w", err)
	}

	if err := client.Start(); err != nil {
		return fmt.Errorf("start rpc client: %w", err)
	}

	p.client = client
	return nil
}

type subscriptions struct {
	txCh    <-chan rpccoretypes.ResultEvent
	blockCh <-chan rpccoretypes.ResultEvent
}

func (p *Processor) subscribe(ctx context.Context) (*subscriptions, error) {
	txCh, err := p.client.Subscribe(ctx, subscriberName, "tm.event = 'Tx'")
	if err != nil {
		return nil, fmt.Errorf("subscribe Tx: %w", err)
	}

	blockCh, err := p.client.Subscribe(ctx, subscriberName, "tm.event = 'NewBlock'")
	if err != nil {
		return nil, fmt.Errorf("subscribe NewBlock: %w", err)
	}

	p.log.Printf("subscribed to events: Tx, NewBlock")
	return &subscriptions{txCh: txCh, blockCh: blockCh}, nil
}

func (p *Processor) startEventHandlers(ctx context.Context, subs *subscriptions) {
	p.startEventLoop(ctx, "Tx", subs.txCh, func(ev rpccoretypes.ResultEvent) {
		if ev.Data != nil {
			p.handleTx(ctx, ev)
		}
	})

	p.startEventLoop(ctx, "NewBlock", subs.blockCh, func(ev rpccoretypes.ResultEvent) {
		if ev.Data == nil {
			return
		}
		p.updateLastBlockTime()
		p.handleNewBlock(ev)
	})
}

// startEventLoop starts a goroutine to handle events from a channel
func (p *Processor) startEventLoop(ctx context.Context, name string, ch <-chan rpccoretypes.ResultEvent, handler func(rpccoretypes.ResultEvent)) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					p.log.Printf("%s event channel closed", name)
					return
				}
				handler(ev)
			}
		}
	}()
}

// handleTx flattens the ABCI events of one delivered transaction and
// dispatches each to every registered handler.
func (p *Processor) handleTx(ctx context.Context, ev rpccoretypes.ResultEvent) {
	data, ok := ev.Data.(cmttypes.EventDataTx)
	if !ok {
		if d2, ok2 := ev.Data.(*cmttypes.EventDataTx); ok2 && d2 != nil {
			data = *d2
			ok = true
		}
	}
	if !ok {
		p.log.Printf("unknown Tx event data type: %T", ev.Data)
		return
	}

	for _, abciEvent := range data.TxResult.Result.Events {
		p.dispatch(ctx, events.FromABCI(data.TxResult.Height, abciEvent))
	}
}

func (p *Processor) dispatch(ctx context.Context, ev events.Event) {
	p.eventsSeen.Add(1)

	for _, h := range p.handlers {
		msgs, err := h.Handle(ctx, ev)
		if err != nil {
			p.handlerErrors.Add(1)
			p.log.Printf("handler error on %s at height %d: %v", ev.Type, ev.Height, err)
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		if err := p.submit.Submit(ctx, msgs); err != nil {
			p.handlerErrors.Add(1)
			p.log.Printf("submit error on %s at height %d: %v", ev.Type, ev.Height, err)
			continue
		}
		p.votesCast.Add(uint64(len(msgs)))
		p.pushVoteUpdates(msgs)
	}
}

func (p *Processor) handleNewBlock(ev rpccoretypes.ResultEvent) {
	data, ok := ev.Data.(cmttypes.EventDataNewBlock)
	if !ok {
		if d2, ok2 := ev.Data.(*cmttypes.EventDataNewBlock); ok2 && d2 != nil {
			data = *d2
			ok = true
		}
	}
	if !ok {
		p.log.Printf("unknown NewBlock event data type: %T", ev.Data)
		return
	}

	blk := data.Block
	if blk == nil || blk.Header.Height <= 0 {
		return
	}

	if p.heights != nil {
		p.heights.Set(uint64(blk.Header.Height))
	}
	p.log.Printf("block observed: height=%d", blk.Header.Height)
	p.pushStatusUpdate()
}

func (p *Processor) pushStatusUpdate() {
	if p.updates == nil {
		return
	}
	info := p.info.Resolve()
	update := tui.StatusUpdate{
		Height:        p.heights.Latest(),
		ChainID:       info.ChainID,
		NodeVersion:   info.NodeVersion,
		SourceChain:   p.cfg.SourceChain,
		Verifier:      p.cfg.VerifierAddress,
		Contract:      p.cfg.VotingVerifierContract,
		EventsSeen:    p.eventsSeen.Load(),
		VotesCast:     p.votesCast.Load(),
		HandlerErrors: p.handlerErrors.Load(),
	}
	select {
	case p.updates <- update:
	default: // never stall the event loop on a slow TUI
	}
}

func (p *Processor) pushVoteUpdates(msgs []voting.MsgExecuteContract) {
	if p.updates == nil {
		return
	}
	for _, msg := range msgs {
		payload, ok := voting.DecodeVoteMsg(msg.Msg)
		if !ok {
			continue
		}
		votes := make([]string, len(payload.Votes))
		for i, v := range payload.Votes {
			votes[i] = string(v)
		}
		update := tui.VoteUpdate{
			PollID: payload.PollID.String(),
			Votes:  votes,
			Time:   time.Now(),
		}
		select {
		case p.updates <- update:
		default:
		}
	}
}

// updateLastBlockTime updates the last block time (thread-safe)
func (p *Processor) updateLastBlockTime() {
	p.lastBlockTimeMu.Lock()
	p.lastBlockTime = time.Now()
	p.lastBlockTimeMu.Unlock()
}

// watchdogLoop runs the main loop checking for missing blocks
func (p *Processor) watchdogLoop(ctx context.Context) error {
	watchdog := time.NewTicker(30 * time.Second)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watchdog.C:
			if p.shouldReconnect() {
				p.log.Printf("no blocks received for 30+ seconds, reconnecting WebSocket...")
				p.client = nil
				p.updateLastBlockTime()
				return fmt.Errorf("reconnect: no blocks for 30s")
			}
		}
	}
}

// shouldReconnect checks if we should reconnect due to missing blocks
func (p *Processor) shouldReconnect() bool {
	p.lastBlockTimeMu.RLock()
	defer p.lastBlockTimeMu.RUnlock()
	return time.Since(p.lastBlockTime) > 30*time.Second
}

func (p *Processor) Close() error {
	if p.client != nil {
		return p.client.Stop()
	}
	return nil
}
