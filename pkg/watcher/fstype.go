package watcher

// FilesystemType is a coarse classification of where a watched file lives.
// Network and FUSE mounts often deliver no inotify events, so the watcher
// polls them instead.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeSSHFS
	FSTypeFUSE
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeSSHFS:
		return "sshfs"
	case FSTypeFUSE:
		return "fuse"
	default:
		return "unknown"
	}
}

// detectFilesystemTypeFunc is swapped in tests.
var detectFilesystemTypeFunc = detectFilesystemType

// DetectFilesystemType classifies the filesystem holding path. Paths that
// do not exist yet are classified by their parent directory.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	return detectFilesystemTypeFunc(path)
}

func isRemoteFilesystem(t FilesystemType) bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeSSHFS, FSTypeFUSE:
		return true
	default:
		return false
	}
}

// classifyMountType maps a mount table fstype field.
func classifyMountType(fstype string) FilesystemType {
	switch fstype {
	case "nfs", "nfs4":
		return FSTypeNFS
	case "cifs", "smb3", "smbfs":
		return FSTypeSMB
	case "fuse.sshfs":
		return FSTypeSSHFS
	case "":
		return FSTypeUnknown
	}
	if len(fstype) >= 4 && fstype[:4] == "fuse" {
		return FSTypeFUSE
	}
	return FSTypeLocal
}
