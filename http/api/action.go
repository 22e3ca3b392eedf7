package api

// Action requests a panel to perform an action. If Target is empty, the
// active panel is addressed.
type Action struct {
	Kind   string `json:"kind" validate:"required" enums:"test-connection,fetch-data,show-snippet" jsonschema:"enum=test-connection,enum=fetch-data,enum=show-snippet"`
	Target string `json:"target"`
}

// ActionResult reports how many panels received the action. Zero means the
// action has been dropped because the target is not active.
type ActionResult struct {
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	Delivered int    `json:"delivered"`
}
