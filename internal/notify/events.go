package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// Event types emitted by the pricing pipeline.
const (
	EventHighValueItem   = "high_value_item"
	EventSessionComplete = "session_complete"
	EventError           = "error"
)

// HighValueItem announces a single item priced at or above the operator's
// alert threshold.
func (n *Notifier) HighValueItem(ctx context.Context, it domain.ValuedItem) error {
	title := fmt.Sprintf("High value: %s", it.Item.DisplayName())

	var b strings.Builder
	fmt.Fprintf(&b, "%.0fc (%.1f div), %s confidence\n", it.EstimatedValue, it.DivineValue, it.Confidence)
	fmt.Fprintf(&b, "%s\n", it.Reasoning)
	if it.Item.StashTab != "" {
		fmt.Fprintf(&b, "Tab: %s\n", it.Item.StashTab)
	}
	fmt.Fprintf(&b, "List at: %dc", it.SuggestedPrice.Chaos)
	if it.SuggestedPrice.Divine > 0 {
		fmt.Fprintf(&b, " / %.1f div", it.SuggestedPrice.Divine)
	}
	if len(it.Notes) > 0 {
		fmt.Fprintf(&b, "\n%s", strings.Join(it.Notes, ", "))
	}

	return n.Notify(ctx, EventHighValueItem, title, b.String())
}

// SessionComplete summarizes a finished pricing run.
func (n *Notifier) SessionComplete(ctx context.Context, sess domain.Session) error {
	title := fmt.Sprintf("Stash priced: %s", sess.League)
	message := fmt.Sprintf(
		"%d items scanned, %d priced\nTotal: %.0fc (%.1f div @ %.0fc)\nDuration: %s",
		sess.ItemsSeen, sess.ItemsPriced,
		sess.TotalChaos, sess.TotalChaos/sess.DivineRate, sess.DivineRate,
		sess.FinishedAt.Sub(sess.StartedAt).Round(time.Second),
	)
	return n.Notify(ctx, EventSessionComplete, title, message)
}

// Error reports a failed run.
func (n *Notifier) Error(ctx context.Context, stage string, err error) error {
	return n.Notify(ctx, EventError, "Pricing run failed", fmt.Sprintf("%s: %v", stage, err))
}
