//go:build !linux

package watcher

// Without a mount table to read, every filesystem is treated as unknown and
// fsnotify is tried first.
func detectFilesystemType(string) FilesystemType {
	return FSTypeUnknown
}
