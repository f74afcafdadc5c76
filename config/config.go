package config

const (
	AVATAR_SIZE = 128

	// OrgDirectoryRefreshInterval paces the in-memory org directory cache
	// refresh, in minutes.
	OrgDirectoryRefreshIntervalMin = 20

	// DeleteCodeTTLMin bounds how long an issued organization deletion
	// confirmation code stays valid, in minutes.
	DeleteCodeTTLMin = 10
)
