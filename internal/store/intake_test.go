package store

import (
	"os"
	"reflect"
	"testing"

	"github.com/xomakone3/storebot/core/logger"
)

func dispatch(t *testing.T, app *App, c *fakeContext) {
	t.Helper()
	if err := app.fsm.HandleCurrent(c); err != nil {
		t.Fatalf("dispatch in state %s: %v", app.fsm.GetState(c.sender.ID), err)
	}
}

func TestIntakeFullConversation(t *testing.T) {
	app, st := newTestApp(t)

	start := ctxFor(testAdminID)
	if err := app.handleAddProduct(start); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	if start.lastSent() != msgPromptTitle {
		t.Fatalf("sent %q, want title prompt", start.lastSent())
	}

	dispatch(t, app, textCtx(testAdminID, "Jacket"))
	dispatch(t, app, textCtx(testAdminID, "Waterproof shell"))
	dispatch(t, app, textCtx(testAdminID, "1500"))
	dispatch(t, app, textCtx(testAdminID, "S, M"))
	dispatch(t, app, textCtx(testAdminID, "black, gray"))

	photo := photoCtx(testAdminID)
	dispatch(t, app, photo)
	if photo.lastSent() != msgProductAdded {
		t.Fatalf("sent %q, want %q", photo.lastSent(), msgProductAdded)
	}
	if app.fsm.InProgress(testAdminID) {
		t.Fatal("session not cleared after commit")
	}

	products := st.Load(logger.Background())
	if len(products) != 1 {
		t.Fatalf("catalog = %+v, want one product", products)
	}
	p := products[0]
	if p.ID != "1" || p.Name != "Jacket" || p.Description != "Waterproof shell" {
		t.Fatalf("product = %+v", p)
	}
	if p.Price != 1500 {
		t.Fatalf("price = %d, want 1500", p.Price)
	}
	if !reflect.DeepEqual(p.Sizes, []string{"S", "M"}) {
		t.Fatalf("sizes = %v", p.Sizes)
	}
	if !reflect.DeepEqual(p.Colors, []string{"black", "gray"}) {
		t.Fatalf("colors = %v", p.Colors)
	}
	if !reflect.DeepEqual(p.Images, []string{"product_1_0.jpg"}) {
		t.Fatalf("images = %v", p.Images)
	}
	if _, err := os.Stat(st.ImagePath("product_1_0.jpg")); err != nil {
		t.Fatalf("image file missing: %v", err)
	}
}

func TestIntakePriceReprompts(t *testing.T) {
	app, _ := newTestApp(t)

	if err := app.handleAddProduct(ctxFor(testAdminID)); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	dispatch(t, app, textCtx(testAdminID, "Jacket"))
	dispatch(t, app, textCtx(testAdminID, "warm"))

	bad := textCtx(testAdminID, "cheap")
	dispatch(t, app, bad)
	if bad.lastSent() != msgPriceInvalid {
		t.Fatalf("sent %q, want invalid-price prompt", bad.lastSent())
	}
	if app.fsm.GetState(testAdminID) != statePrice {
		t.Fatalf("state = %s, want price state kept", app.fsm.GetState(testAdminID))
	}

	good := textCtx(testAdminID, " 1500 ")
	dispatch(t, app, good)
	if good.lastSent() != msgPromptSizes {
		t.Fatalf("sent %q, want sizes prompt", good.lastSent())
	}
	if app.fsm.Draft(testAdminID).Price != 1500 {
		t.Fatalf("price = %d, want 1500", app.fsm.Draft(testAdminID).Price)
	}
}

func TestIntakePhotoRequired(t *testing.T) {
	app, st := newTestApp(t)

	if err := app.handleAddProduct(ctxFor(testAdminID)); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	dispatch(t, app, textCtx(testAdminID, "Jacket"))
	dispatch(t, app, textCtx(testAdminID, "warm"))
	dispatch(t, app, textCtx(testAdminID, "1500"))
	dispatch(t, app, textCtx(testAdminID, "S"))
	dispatch(t, app, textCtx(testAdminID, "black"))

	text := textCtx(testAdminID, "no photo, sorry")
	dispatch(t, app, text)
	if text.lastSent() != msgPhotoRequired {
		t.Fatalf("sent %q, want photo prompt", text.lastSent())
	}
	if app.fsm.GetState(testAdminID) != statePhoto {
		t.Fatal("photo state not kept after text reply")
	}
	if got := st.Load(logger.Background()); len(got) != 0 {
		t.Fatalf("catalog modified without a photo: %+v", got)
	}
}

func TestIntakeCancelDiscardsDraft(t *testing.T) {
	app, st := newTestApp(t)

	if err := app.handleAddProduct(ctxFor(testAdminID)); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	dispatch(t, app, textCtx(testAdminID, "Jacket"))

	cancel := ctxFor(testAdminID)
	if err := app.handleCancel(cancel); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancel.lastSent() != msgIntakeCancelled {
		t.Fatalf("sent %q, want cancel notice", cancel.lastSent())
	}
	// The cancel reply also clears any reply keyboard.
	last := cancel.sentOpts[len(cancel.sentOpts)-1]
	if last == nil || last.ReplyMarkup == nil || !last.ReplyMarkup.RemoveKeyboard {
		t.Fatalf("cancel reply options = %+v, want keyboard removal", last)
	}
	if app.fsm.InProgress(testAdminID) {
		t.Fatal("session survived cancel")
	}
	if got := st.Load(logger.Background()); len(got) != 0 {
		t.Fatalf("catalog modified by cancelled intake: %+v", got)
	}
}

func TestIntakeAbortsWhenAdminRoleLost(t *testing.T) {
	app, st := newTestApp(t)

	if err := app.handleAddProduct(ctxFor(testAdminID)); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	dispatch(t, app, textCtx(testAdminID, "Jacket"))

	// The admin id changes underneath an in-flight conversation.
	app.cfg.Telegram.AdminID = testAdminID + 1

	c := textCtx(testAdminID, "warm")
	dispatch(t, app, c)
	if c.lastSent() != msgDenied {
		t.Fatalf("sent %q, want denial", c.lastSent())
	}
	if app.fsm.InProgress(testAdminID) {
		t.Fatal("session survived admin revocation")
	}
	if got := st.Load(logger.Background()); len(got) != 0 {
		t.Fatalf("catalog modified: %+v", got)
	}
}

func TestIntakeDefaultsForEmptyFields(t *testing.T) {
	app, st := newTestApp(t)

	if err := app.handleAddProduct(ctxFor(testAdminID)); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	dispatch(t, app, textCtx(testAdminID, ""))
	dispatch(t, app, textCtx(testAdminID, ""))
	dispatch(t, app, textCtx(testAdminID, "100"))
	dispatch(t, app, textCtx(testAdminID, ""))
	dispatch(t, app, textCtx(testAdminID, ""))
	dispatch(t, app, photoCtx(testAdminID))

	products := st.Load(logger.Background())
	if len(products) != 1 {
		t.Fatalf("catalog = %+v", products)
	}
	p := products[0]
	if p.Name != defaultName || p.Description != defaultDescription {
		t.Fatalf("defaults not applied: %+v", p)
	}
	// An empty reply still yields one (empty) token after the comma split.
	if !reflect.DeepEqual(p.Sizes, []string{""}) || !reflect.DeepEqual(p.Colors, []string{""}) {
		t.Fatalf("sizes/colors = %v / %v", p.Sizes, p.Colors)
	}
	if p.Category != "uncategorized" {
		t.Fatalf("category = %q", p.Category)
	}
}

func TestIntakeIDRestartsWhenCatalogEmptied(t *testing.T) {
	app, st := newTestApp(t)
	seedCatalog(t, st, nil)

	// First product gets id 1.
	if err := app.handleAddProduct(ctxFor(testAdminID)); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	dispatch(t, app, textCtx(testAdminID, "Jacket"))
	dispatch(t, app, textCtx(testAdminID, "warm"))
	dispatch(t, app, textCtx(testAdminID, "1500"))
	dispatch(t, app, textCtx(testAdminID, "S"))
	dispatch(t, app, textCtx(testAdminID, "black"))
	dispatch(t, app, photoCtx(testAdminID))

	// Delete it, then add another: the id advances instead of reusing 1.
	del := ctxFor(testAdminID)
	del.args = []string{"1"}
	if err := app.handleDeleteProduct(del); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := app.handleAddProduct(ctxFor(testAdminID)); err != nil {
		t.Fatalf("add_product: %v", err)
	}
	dispatch(t, app, textCtx(testAdminID, "Boots"))
	dispatch(t, app, textCtx(testAdminID, "leather"))
	dispatch(t, app, textCtx(testAdminID, "4000"))
	dispatch(t, app, textCtx(testAdminID, "40,41"))
	dispatch(t, app, textCtx(testAdminID, "brown"))
	dispatch(t, app, photoCtx(testAdminID))

	products := st.Load(logger.Background())
	if len(products) != 1 || products[0].ID != "1" {
		// NextID counts live entries only, so after the catalog is emptied
		// the numbering restarts.
		t.Fatalf("catalog = %+v, want single product with id 1", products)
	}
}
