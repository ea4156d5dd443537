package constants

import "os"

// File system permissions.
const (
	// DefaultFilePermissions is used for downloaded media and list files (rw-r--r--).
	DefaultFilePermissions os.FileMode = 0o644

	// DefaultFolderPermissions is used for the download root and per-platform folders (rwxr-xr-x).
	DefaultFolderPermissions os.FileMode = 0o755

	// PrivateFilePermissions is used for files holding credentials, such as exported cookies (rw-------).
	PrivateFilePermissions os.FileMode = 0o600
)

// File extensions recognized when tagging and expanding URL lists.
const (
	ExtensionMP3  = ".mp3"
	ExtensionFLAC = ".flac"
	ExtensionTXT  = ".txt"
	ExtensionJPG  = ".jpg"
	ExtensionWEBP = ".webp"
	ExtensionPNG  = ".png"
)
