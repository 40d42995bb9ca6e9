package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"revision-validator/core/reconcile"

	"go.uber.org/zap"
)

// consoleHelp lists the operator commands.
const consoleHelp = "Enter = continue | p = pause | r = resume | c = cancel | reprocess | finish"

// console lets the operator drive a run from the terminal.
type console struct {
	control *reconcile.Control
	out     io.Writer
	logger  *zap.Logger

	mu     sync.Mutex
	prompt string
}

func newConsole(control *reconcile.Control, out io.Writer, logger *zap.Logger) *console {
	c := &console{control: control, out: out, logger: logger}
	control.Subscribe(c.show)
	return c
}

// show prints a prompt once each time the worker starts waiting on the operator.
func (c *console) show(s reconcile.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.Prompt == c.prompt {
		return
	}
	c.prompt = s.Prompt
	switch s.Awaiting {
	case reconcile.AwaitingAck:
		fmt.Fprintf(c.out, "\n>>> %s [Enter]\n", s.Prompt)
	case reconcile.AwaitingDecision:
		fmt.Fprintf(c.out, "\n>>> %s [reprocess/finish]\n", s.Prompt)
	}
}

// handle applies one line of operator input.
func (c *console) handle(line string) error {
	switch cmd := strings.ToLower(strings.TrimSpace(line)); cmd {
	case "":
		return c.control.Acknowledge()
	case "p", "pause":
		c.control.Pause()
	case "r", "resume":
		c.control.Resume()
	case "c", "cancel":
		c.control.Cancel()
	case "reprocess", "finish":
		return c.control.Decide(reconcile.Decision(cmd))
	default:
		return fmt.Errorf("unknown command %q (%s)", line, consoleHelp)
	}
	return nil
}

// serve reads commands until in is exhausted.
func (c *console) serve(in io.Reader) {
	fmt.Fprintln(c.out, consoleHelp)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		err := c.handle(scanner.Text())
		switch {
		case err == nil:
		case errors.Is(err, reconcile.ErrNotAwaiting):
			fmt.Fprintln(c.out, "Nothing is waiting for that right now.")
		default:
			fmt.Fprintln(c.out, err)
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("Console input closed", zap.Error(err))
	}
}

// autoDecider answers the reprocess decision without the operator. It allows
// at most max reprocess passes before finishing.
type autoDecider struct {
	control *reconcile.Control
	mode    reconcile.Decision
	max     int
	logger  *zap.Logger

	mu     sync.Mutex
	passes int
}

func newAutoDecider(control *reconcile.Control, mode reconcile.Decision, max int, logger *zap.Logger) *autoDecider {
	d := &autoDecider{control: control, mode: mode, max: max, logger: logger}
	control.Subscribe(d.observe)
	return d
}

func (d *autoDecider) observe(s reconcile.Status) {
	if s.Awaiting != reconcile.AwaitingDecision {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	decision := reconcile.DecisionFinish
	if d.mode == reconcile.DecisionReprocess && d.passes < d.max {
		decision = reconcile.DecisionReprocess
	}
	if err := d.control.Decide(decision); err != nil {
		// Status updates while the decision is already answered land here
		if !errors.Is(err, reconcile.ErrNotAwaiting) {
			d.logger.Warn("Automatic decision rejected", zap.Error(err))
		}
		return
	}
	if decision == reconcile.DecisionReprocess {
		d.passes++
	}
	d.logger.Info("Answered reprocess decision", zap.String("decision", string(decision)))
}
