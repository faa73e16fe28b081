// Package misc keeps build time information about the program.
package misc

// Values below are set at link time:
//
//	go build -ldflags "-X csspc/misc.version=1.2.3 -X csspc/misc.gitHash=abcdef"
var (
	appName = "csspc"
	version = "1.0.0"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
