package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xomakone3/storebot/core/logger"
	tghelpers "github.com/xomakone3/storebot/core/telegram/helpers"
	"github.com/xomakone3/storebot/core/telegram/keyboard"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// errMissingPayload marks a web-app update that arrived without order data.
var errMissingPayload = errors.New("webapp update carries no payload")

func (a *App) handleStart(c tele.Context) error {
	tghelpers.WithHandler(c, "start")
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnCatalog, WebAppURL: a.cfg.WebApp.URL},
		{Text: btnCart, Unique: "cart"},
	})
	return tghelpers.SendMarkup(c, msgWelcome, markup)
}

func (a *App) handleHelp(c tele.Context) error {
	tghelpers.WithHandler(c, "help")
	if a.isAdmin(c.Sender().ID) {
		return c.Send(msgHelpAdmin)
	}
	return c.Send(msgHelpPublic)
}

func (a *App) handleListProducts(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "list_products")

	products := a.store.Load(ctx)
	if len(products) == 0 {
		return c.Send(msgNoProducts)
	}

	var b strings.Builder
	b.WriteString(msgListHeader)
	for _, p := range products {
		fmt.Fprintf(&b, "ID: %s\n", p.ID)
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
		fmt.Fprintf(&b, "Price: %d₽\n", p.Price)
		b.WriteString(msgListDivider)
	}
	return c.Send(b.String())
}

func (a *App) handleDeleteProduct(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "delete_product")

	args := c.Args()
	if len(args) != 1 {
		return c.Send(msgDeleteUsage)
	}
	productID := args[0]

	products := a.store.Load(ctx)
	index := -1
	for i, p := range products {
		if p.ID == productID {
			index = i
			break
		}
	}
	if index == -1 {
		return c.Send(fmt.Sprintf(msgDeleteNotFound, productID))
	}

	a.store.RemoveImages(ctx, products[index])
	products = append(products[:index], products[index+1:]...)
	if err := a.store.Save(ctx, products); err != nil {
		return err
	}

	logger.Info(ctx, "catalog", "product.deleted",
		slog.String("product_id", productID),
		slog.Int("count", len(products)),
	)
	return c.Send(fmt.Sprintf(msgDeleteDone, productID))
}

func (a *App) handleCancel(c tele.Context) error {
	tghelpers.WithHandler(c, "cancel")
	a.fsm.Clear(c.Sender().ID)
	return tghelpers.SendMarkup(c, msgIntakeCancelled, keyboard.RemoveKeyboard())
}

func (a *App) handleCartCallback(c tele.Context) error {
	tghelpers.WithHandler(c, "cart")
	_ = c.Respond()
	// TODO: real cart once the storefront exposes per-user baskets.
	return tghelpers.EditOrSend(c, msgCartEmpty)
}

func (a *App) handleWebAppData(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "webapp_order")

	msg := c.Message()
	if msg == nil || msg.WebAppData == nil {
		logger.Error(ctx, "tg", "webapp.payload.missing",
			slog.String("status", logger.Status(errMissingPayload)),
			slog.String("err", errMissingPayload.Error()),
		)
		return c.Send(msgOrderFailed)
	}

	payload := msg.WebAppData.Data
	logger.Info(ctx, "tg", "webapp.order",
		slog.String("payload", logger.SanitizeLimit(payload, 256)),
	)
	return c.Send(fmt.Sprintf(msgOrderThanks, payload))
}
