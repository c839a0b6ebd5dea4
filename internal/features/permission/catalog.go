package permission

// catalog enumerates every grantable capability. It is fixed at build time;
// changing it is a deploy, not a runtime operation.
var catalog = []ModuleDef{
	{
		Module: "leads",
		Screens: []ScreenDef{
			{Screen: "all", Actions: []string{"view", "create", "update", "delete", "assign"}},
			{Screen: "detail", Actions: []string{"view", "calls", "callTask", "helpRequest", "notes", "bookings"}},
		},
	},
	{
		Module: "callTasks",
		Screens: []ScreenDef{
			{Screen: "tasks", Actions: []string{"view", "create", "ack", "complete"}},
		},
	},
	{
		Module: "helpRequests",
		Screens: []ScreenDef{
			{Screen: "inbox", Actions: []string{"view", "respond"}},
			{Screen: "sent", Actions: []string{"view"}},
		},
	},
	{
		Module: "alarms",
		Screens: []ScreenDef{
			{Screen: "alarms", Actions: []string{"view", "create", "update", "delete"}},
		},
	},
	{
		Module: "bookings",
		Screens: []ScreenDef{
			{Screen: "op", Actions: []string{"view", "create", "update"}},
			{Screen: "ip", Actions: []string{"view", "create", "update"}},
			{Screen: "diagnostics", Actions: []string{"view", "create", "update"}},
		},
	},
	{
		Module: "roles",
		Screens: []ScreenDef{
			{Screen: "roles", Actions: []string{"view", "create", "update", "delete"}},
			{Screen: "permissions", Actions: []string{"view"}},
		},
	},
	{
		Module: "users",
		Screens: []ScreenDef{
			{Screen: "users", Actions: []string{"view", "create", "update", "delete"}},
		},
	},
	{
		Module: "dashboard",
		Screens: []ScreenDef{
			{Screen: "overview", Actions: []string{"view"}},
			{Screen: "analytics", Actions: []string{"view"}},
		},
	},
}

// defaultKeys are pre-checked when an administrator creates a new role. This
// is a UX convenience, not a security boundary.
var defaultKeys = []string{
	"leads.all.view",
	"leads.detail.view",
	"leads.detail.calls",
	"callTasks.tasks.view",
	"callTasks.tasks.ack",
	"callTasks.tasks.complete",
	"helpRequests.inbox.view",
	"helpRequests.sent.view",
	"alarms.alarms.view",
	"alarms.alarms.create",
	"dashboard.overview.view",
}
