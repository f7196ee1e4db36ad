package store

// Fixed user-visible texts. Handlers compare against these in tests, so any
// change here is a behavior change.
const (
	msgWelcome = "👋 Welcome to our store!\n\nChoose what you are interested in:"

	msgDenied = "You do not have administrator rights."

	msgHelpAdmin = `Available commands:
/start - Start working with the bot
/help - Show the command list
/list_products - Show the product list
/add_product - Add a new product
/delete_product - Delete a product`

	msgHelpPublic = `Available commands:
/start - Start working with the bot
/help - Show the command list`

	msgNoProducts  = "No products yet."
	msgListHeader  = "Product list:\n\n"
	msgListDivider = "-------------------\n"

	msgDeleteUsage    = "Specify the product id to delete.\nExample: /delete_product 1"
	msgDeleteNotFound = "Product with id %s not found."
	msgDeleteDone     = "Product with id %s deleted."

	msgPromptTitle       = "Enter the product name:"
	msgPromptDescription = "Enter the product description:"
	msgPromptPrice       = "Enter the product price:"
	msgPriceInvalid      = "Please enter a valid price (whole number)."
	msgPromptSizes       = "Enter the available sizes separated by commas (e.g. XS,S,M,L,XL):"
	msgPromptColors      = "Enter the available colors separated by commas (e.g. white,black,gray):"
	msgPromptPhoto       = "Upload a product photo:"
	msgPhotoRequired     = "Please upload a photo to finish."
	msgProductAdded      = "Product added successfully!"
	msgIntakeCancelled   = "Product intake cancelled. Use /add_product to start over."

	msgCartEmpty = "🛒 The cart is empty for now. Pick something in the catalog!"

	msgOrderThanks = "Thank you for your order!\nWe will contact you to confirm.\nOrder details: %s"
	msgOrderFailed = "An error occurred while processing the order."

	btnCatalog = "🛍 Catalog"
	btnCart    = "📦 Cart"
)

// Draft defaults applied when a field was never collected.
const (
	defaultName        = "untitled"
	defaultDescription = "none"
)
