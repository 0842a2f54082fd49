package cli

// Options is the fully-parsed configuration for a single invocation.
//
// It supports:
// - merge driver positional args: <current> <base> <other> (git's %A %O %B)
// - --install[=global|local] to register the driver with git
// - --resolve to fix dumps already left conflicted in the index
type Options struct {
	CurrentPath string
	BasePath    string
	OtherPath   string

	Install InstallScope
	Resolve bool

	Verbose bool
}

// InstallScope selects which git config file --install writes to.
type InstallScope string

const (
	InstallNone   InstallScope = ""
	InstallGlobal InstallScope = "global"
	InstallLocal  InstallScope = "local"
)
