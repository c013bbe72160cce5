package safety

// Built-in classification tables. Entries starting with "/" are absolute
// prefixes; everything else is relative to the user's home directory.
// Order within a table does not matter; precedence between tables is
// fixed by Validator.Classify.

// protectedPaths hold critical system files or user data whose deletion
// risks system instability or data loss. They classify as Danger.
var protectedPaths = []string{
	// System directories
	"/System",
	"/usr/bin",
	"/usr/sbin",
	"/usr/lib",
	"/usr/libexec",
	"/bin",
	"/sbin",
	"/private/var/db",
	"/private/var/folders",
	"/Library/Extensions",
	"/Library/Frameworks",
	// User critical data
	"Library/Keychains",
	"Library/Application Support",
	"Library/Mail",
	"Library/Messages",
	"Library/Preferences",
	"Library/Accounts",
	"Library/Cookies",
	"Library/Calendars",
	"Library/Contacts",
	"Library/Safari/Bookmarks.plist",
	"Library/Safari/History.db",
	// Documents and user files
	"Documents",
	"Desktop",
	"Pictures",
	"Movies",
	"Music",
	"Downloads",
}

// warningPaths take significant time to re-download or rebuild but do
// not threaten system stability. They classify as Warning.
var warningPaths = []string{
	// Container data
	"Library/Containers",
	"Library/Group Containers",
	// System caches
	"/Library/Caches",
	// Developer tools requiring re-download
	"Library/Developer/Xcode/iOS DeviceSupport",
	"Library/Developer/Xcode/watchOS DeviceSupport",
	"Library/Developer/Xcode/tvOS DeviceSupport",
	// Docker and VMs
	"Library/Containers/com.docker.docker",
	".docker",
}

// warningPatterns are glob patterns that classify as Warning.
var warningPatterns = []string{
	"com.apple.*",
	"*.app/Contents/MacOS/*",
}

// cautionPaths are safe to delete but may require a rebuild. They apply
// only below the user's home directory and classify as Caution.
var cautionPaths = []string{
	"Library/Caches",
	"Library/Logs",
	"Library/Saved Application State",
	".Trash",
}

// safePaths can be deleted without concern and classify as Safe.
var safePaths = []string{
	// Browser caches
	"Library/Caches/Google/Chrome",
	"Library/Caches/Firefox",
	"Library/Caches/com.apple.Safari",
	"Library/Caches/com.brave.Browser",
	// Temporary files
	"/tmp",
	"/private/tmp",
	"/var/tmp",
	"Library/Caches/Temporary Items",
}
