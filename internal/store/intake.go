package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xomakone3/storebot/core/catalog"
	"github.com/xomakone3/storebot/core/logger"
	tghelpers "github.com/xomakone3/storebot/core/telegram/helpers"
	"github.com/xomakone3/storebot/core/telegram/state"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Product intake walks the admin through one field per message.
const (
	stateTitle       state.State = "intake_title"
	stateDescription state.State = "intake_description"
	statePrice       state.State = "intake_price"
	stateSizes       state.State = "intake_sizes"
	stateColors      state.State = "intake_colors"
	statePhoto       state.State = "intake_photo"
)

// stepOutcome tags what a step decided about the conversation, so the driver
// can advance, re-prompt, or tear down without inspecting the reply text.
type stepOutcome int

const (
	// stepAdvance moves the session to the step's next state.
	stepAdvance stepOutcome = iota
	// stepRepeat keeps the current state so the same input is asked again.
	stepRepeat
	// stepDone ends the conversation and clears the session.
	stepDone
)

type stepFunc func(ctx context.Context, c tele.Context) (stepOutcome, error)

func (a *App) handleAddProduct(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "add_product")
	userID := c.Sender().ID

	a.fsm.Begin(userID, stateTitle)
	logger.Info(ctx, "intake", "intake.started",
		slog.Int64("user_id", userID),
	)
	return c.Send(msgPromptTitle)
}

// registerStates wires every conversation state to its step through a shared
// driver. Each dispatch re-checks the admin gate: losing the admin role
// mid-conversation aborts the session.
func (a *App) registerStates() {
	steps := []struct {
		st   state.State
		next state.State
		fn   stepFunc
	}{
		{stateTitle, stateDescription, a.stepTitle},
		{stateDescription, statePrice, a.stepDescription},
		{statePrice, stateSizes, a.stepPrice},
		{stateSizes, stateColors, a.stepSizes},
		{stateColors, statePhoto, a.stepColors},
		{statePhoto, state.StateIdle, a.stepPhoto},
	}
	for _, s := range steps {
		state.RegisterHandler(a.fsm, s.st, a.driveStep(s.fn, s.next))
	}
}

func (a *App) driveStep(fn stepFunc, next state.State) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		userID := c.Sender().ID

		if !a.isAdmin(userID) {
			a.fsm.Clear(userID)
			logger.Warn(ctx, "intake", "intake.aborted",
				slog.Int64("user_id", userID),
				slog.String("reason", "not_admin"),
			)
			return a.deny(c)
		}

		outcome, err := fn(ctx, c)
		if err != nil {
			return err
		}
		switch outcome {
		case stepAdvance:
			a.fsm.SetState(userID, next)
		case stepDone:
			a.fsm.Clear(userID)
		}
		return nil
	}
}

func (a *App) stepTitle(ctx context.Context, c tele.Context) (stepOutcome, error) {
	a.fsm.UpdateDraft(c.Sender().ID, func(d *state.Draft) {
		d.Name = c.Text()
	})
	return stepAdvance, c.Send(msgPromptDescription)
}

func (a *App) stepDescription(ctx context.Context, c tele.Context) (stepOutcome, error) {
	a.fsm.UpdateDraft(c.Sender().ID, func(d *state.Draft) {
		d.Description = c.Text()
	})
	return stepAdvance, c.Send(msgPromptPrice)
}

func (a *App) stepPrice(ctx context.Context, c tele.Context) (stepOutcome, error) {
	price, err := strconv.Atoi(strings.TrimSpace(c.Text()))
	if err != nil {
		return stepRepeat, c.Send(msgPriceInvalid)
	}
	a.fsm.UpdateDraft(c.Sender().ID, func(d *state.Draft) {
		d.Price = price
	})
	return stepAdvance, c.Send(msgPromptSizes)
}

func (a *App) stepSizes(ctx context.Context, c tele.Context) (stepOutcome, error) {
	sizes := splitList(c.Text())
	a.fsm.UpdateDraft(c.Sender().ID, func(d *state.Draft) {
		d.Sizes = sizes
	})
	return stepAdvance, c.Send(msgPromptColors)
}

func (a *App) stepColors(ctx context.Context, c tele.Context) (stepOutcome, error) {
	colors := splitList(c.Text())
	a.fsm.UpdateDraft(c.Sender().ID, func(d *state.Draft) {
		d.Colors = colors
	})
	return stepAdvance, c.Send(msgPromptPhoto)
}

// stepPhoto commits the draft: downloads the photo, assigns a fresh id, and
// rewrites the catalog file. Only a message that actually carries a photo
// completes the conversation.
func (a *App) stepPhoto(ctx context.Context, c tele.Context) (stepOutcome, error) {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return stepRepeat, c.Send(msgPhotoRequired)
	}

	products := a.store.Load(ctx)
	id := catalog.NextID(products)
	filename := catalog.ImageFileName(id, 0, ".jpg")

	if err := a.download(c, &msg.Photo.File, a.store.ImagePath(filename)); err != nil {
		logger.Error(ctx, "intake", "intake.photo.download.failed",
			slog.String("product_id", id),
			slog.String("err", err.Error()),
		)
		return stepRepeat, c.Send(msgPhotoRequired)
	}

	product := productFromDraft(id, a.fsm.Draft(c.Sender().ID), filename)
	products = append(products, product)
	if err := a.store.Save(ctx, products); err != nil {
		return stepDone, fmt.Errorf("commit product %s: %w", id, err)
	}

	logger.Info(ctx, "intake", "intake.committed",
		slog.String("product_id", id),
		slog.String("name", product.Name),
		slog.Int("price", product.Price),
	)
	return stepDone, c.Send(msgProductAdded)
}

// productFromDraft materializes a catalog entry, substituting defaults for
// fields the conversation never filled.
func productFromDraft(id string, d state.Draft, imageFile string) catalog.Product {
	p := catalog.Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    catalog.DefaultCategory,
		Sizes:       d.Sizes,
		Colors:      d.Colors,
		Images:      []string{imageFile},
	}
	if p.Name == "" {
		p.Name = defaultName
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	return p
}

// splitList parses a comma-separated reply. Tokens are trimmed but not
// dropped, so "S, M," keeps its trailing empty entry, matching what the
// storefront already tolerates.
func splitList(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
