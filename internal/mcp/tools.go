package mcp

import "github.com/mark3labs/mcp-go/mcp"

var methodItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type": map[string]any{
			"type":        "string",
			"description": "Method type: phone, email, address, wechat, qq, or any other label",
		},
		"value": map[string]any{
			"type":        "string",
			"description": "Method value; entries with an empty value are dropped",
		},
	},
	"required": []string{"type", "value"},
}

var createToolDef = mcp.NewTool("contact_create",
	mcp.WithDescription(`Create a contact. It is added at the front of the list with a fresh id and creation time.
The name may be empty. Methods with an empty value are dropped.`),
	mcp.WithString("name", mcp.Description("Display name")),
	mcp.WithArray("methods", mcp.Description("Ways to reach the contact, in display order"), mcp.Items(methodItems)),
	mcp.WithString("note", mcp.Description("Free-text note")),
	mcp.WithString("avatar", mcp.Description("Avatar image as a base64 data URI (data:image/...;base64,...)")),
	mcp.WithBoolean("bookmarked", mcp.Description("Mark as bookmarked (default false)")),
)

var getToolDef = mcp.NewTool("contact_get",
	mcp.WithDescription("Fetch one contact by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
	mcp.WithBoolean("include_avatar", mcp.Description("Include the avatar data URI (default false)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var updateToolDef = mcp.NewTool("contact_update",
	mcp.WithDescription(`Update a contact. Only the fields provided are changed; methods, when given, replace the whole list.
The id, creation time and list position never change.`),
	mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
	mcp.WithString("name", mcp.Description("New display name")),
	mcp.WithArray("methods", mcp.Description("Replacement method list"), mcp.Items(methodItems)),
	mcp.WithString("note", mcp.Description("New note")),
	mcp.WithString("avatar", mcp.Description("New avatar data URI; empty string removes it")),
	mcp.WithBoolean("bookmarked", mcp.Description("New bookmark flag")),
)

var deleteToolDef = mcp.NewTool("contact_delete",
	mcp.WithDescription("Permanently delete a contact. Confirm with the user first. Deleting an unknown id reports deleted=false."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
	mcp.WithDestructiveHintAnnotation(true),
)

var bookmarkToolDef = mcp.NewTool("contact_bookmark",
	mcp.WithDescription("Toggle a contact's bookmark flag. An unknown id changes nothing and reports found=false."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
)

var searchToolDef = mcp.NewTool("contact_search",
	mcp.WithDescription(`Search contacts by a case-insensitive substring of the name or any method value.
An empty term lists every contact in scope. Results keep list order.`),
	mcp.WithString("term", mcp.Description("Text to look for")),
	mcp.WithString("scope", mcp.Description("all (default) or bookmarked"), mcp.Enum("all", "bookmarked")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("contact_export",
	mcp.WithDescription(`Export all contacts to a spreadsheet. Default path: ~/.rolo/exports/contacts_<YYYY-MM-DD>.xlsx.
Ids, avatars and exact creation times are not exported. Fails when there are no contacts.`),
	mcp.WithString("path", mcp.Description("Destination .xlsx or .csv file, directly inside an allowed directory")),
	mcp.WithString("format", mcp.Description("xlsx (default) or csv; must match the path extension"), mcp.Enum("xlsx", "csv")),
)

var importToolDef = mcp.NewTool("contact_import",
	mcp.WithDescription(`Import contacts from the first sheet of a .xlsx or .csv file and append them to the list.
Every row becomes a new contact with a fresh id. Rows with neither a name nor a method are skipped.
Nothing is imported if the file cannot be read.`),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .xlsx or .csv file")),
)
