package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var bubbleTypeNames = []string{
	"text_paste", "toolbelt", "pinned", "system",
	"quick_action", "accumulator", "voice", "collaboration",
}

var categoryNames = []string{
	"text", "url", "email", "phone", "address",
	"json", "code", "number", "unknown",
}

var addToolDef = mcp.NewTool("bubble_add",
	mcp.WithDescription("Create an overlay bubble. The type selects the payload shape; a type at its instance cap rejects the add."),
	mcp.WithString("type",
		mcp.Required(),
		mcp.Description("Bubble type"),
		mcp.Enum(bubbleTypeNames...),
	),
	mcp.WithString("content",
		mcp.Description("Text content (text_paste and pinned bubbles)"),
	),
	mcp.WithString("message",
		mcp.Description("Notification message (system bubbles)"),
	),
	mcp.WithString("severity",
		mcp.Description("Notification severity (system bubbles); defaults to info"),
	),
	mcp.WithString("category",
		mcp.Description("Content category (toolbelt and quick_action bubbles); toolbelt defaults to the session's last detected category"),
		mcp.Enum(categoryNames...),
	),
	mcp.WithString("action_label",
		mcp.Description("Action label (quick_action bubbles); defaults to the category's first action"),
	),
	mcp.WithString("pattern_id",
		mcp.Description("Accumulator pattern id from the pattern library (accumulator bubbles)"),
	),
	mcp.WithString("session_name",
		mcp.Description("Session name (collaboration bubbles)"),
	),
	mcp.WithNumber("x", mcp.Description("Initial x position")),
	mcp.WithNumber("y", mcp.Description("Initial y position")),
)

var removeToolDef = mcp.NewTool("bubble_remove",
	mcp.WithDescription("Remove a bubble by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bubble id"),
	),
)

var listToolDef = mcp.NewTool("bubble_list",
	mcp.WithDescription("List bubbles in relevance order. By default only visible bubbles are returned."),
	mcp.WithString("type",
		mcp.Description("Filter by bubble type"),
		mcp.Enum(bubbleTypeNames...),
	),
	mcp.WithBoolean("all",
		mcp.Description("Include hidden bubbles"),
	),
)

var moveToolDef = mcp.NewTool("bubble_move",
	mcp.WithDescription("Move a bubble to a new position. Counts as an interaction."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bubble id"),
	),
	mcp.WithNumber("x", mcp.Required(), mcp.Description("New x position")),
	mcp.WithNumber("y", mcp.Required(), mcp.Description("New y position")),
)

var minimizeToolDef = mcp.NewTool("bubble_minimize",
	mcp.WithDescription("Toggle a bubble's minimized state. Counts as an interaction."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bubble id"),
	),
)

var clearToolDef = mcp.NewTool("bubble_clear",
	mcp.WithDescription("Remove every bubble, or every bubble of one type."),
	mcp.WithString("type",
		mcp.Description("Bubble type to clear; omit to clear everything"),
		mcp.Enum(bubbleTypeNames...),
	),
)

var interactToolDef = mcp.NewTool("bubble_interact",
	mcp.WithDescription("Record a user interaction with a bubble, refreshing its auto-hide deadline. Optionally start or pause an accumulator's collection."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bubble id"),
	),
	mcp.WithBoolean("collecting",
		mcp.Description("Start (true) or pause (false) an accumulator bubble's collection"),
	),
)

var keyboardToolDef = mcp.NewTool("keyboard_set",
	mcp.WithDescription("Set keyboard visibility. Every bubble's visibility and minimization is re-derived from the policy table."),
	mcp.WithBoolean("visible",
		mcp.Required(),
		mcp.Description("Whether the keyboard is visible"),
	),
)

var ingestToolDef = mcp.NewTool("content_ingest",
	mcp.WithDescription("Classify a content sample, route it into every collecting accumulator, and update the session's last category."),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("The content sample"),
	),
	mcp.WithString("source",
		mcp.Description("Provenance tag, e.g. clipboard"),
	),
	mcp.WithBoolean("create_bubble",
		mcp.Description("Also create a text_paste bubble for the sample, capacity permitting"),
	),
)

var classifyToolDef = mcp.NewTool("content_classify",
	mcp.WithDescription("Detect the content category of a sample and its suggested actions, without touching the overlay state."),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("The content sample"),
	),
)

var exportToolDef = mcp.NewTool("accumulator_export",
	mcp.WithDescription("Join an accumulator bubble's collected items with its pattern's delimiter."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Accumulator bubble id"),
	),
	mcp.WithBoolean("reset",
		mcp.Description("Empty the accumulator after exporting, keeping it collecting"),
	),
)
