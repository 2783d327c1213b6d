package testutil

// Shared fixture values used across test suites.
const (
	// TestToken is a syntactically valid bot token for tests.
	TestToken = "123456789:ABCdefGHIjklMNOpqrSTUvwxYZ"

	// TestRelayToken is the static bearer token relay tests authorize with.
	TestRelayToken = "relay-secret-token"

	// TestChatID is a private chat id used as the default send target.
	TestChatID int64 = 987654321

	// TestGroupChatID is a (pre-migration) group chat id.
	TestGroupChatID int64 = -100200300

	// TestSupergroupChatID is the id TestGroupChatID migrates to.
	TestSupergroupChatID int64 = -1001002003004
)
