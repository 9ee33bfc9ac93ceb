package constants

import "time"

const (
	AppName            = "topthree"
	DefaultKeyringUser = "api-token"
	KeyringConnUser    = "postgres-conn"
	DefaultConfigDir   = "~/.config/topthree"
	DefaultStoragePath = "~/.config/topthree/topthree.db"
	DefaultConfigFile  = "~/.config/topthree/config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Slot constants
	SlotCount               = 3
	SlotTextRequiredMessage = "task text required before marking complete"

	// Heat constants
	MaxHeatLevel     = 5
	HeatLookbackDays = 10

	// Storage keys
	KeyHistory          = "history"
	KeyTodayTexts       = "today_texts"
	KeySubmissionPrefix = "submission:"
	KeySyncMark         = "sync_mark"
	UserNamespacePrefix = "user:"

	// Remote constants
	APIPrefix            = "/api/v1"
	DefaultRemoteTimeout = 10 * time.Second
	RequestIDHeader      = "X-Request-ID"

	// Server constants
	DefaultServerHost   = "127.0.0.1"
	DefaultServerPort   = 8787
	ServerReadTimeout   = 15 * time.Second
	ServerWriteTimeout  = 15 * time.Second
	ServerShutdownGrace = 5 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "topthree-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "topthree-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.topthree"
	TrayAppExecutable      = "topthree-tray"
	DefaultNudgeMessage    = "%d/3 done today. Your %d-day streak is at risk."
)
