//go:build linux

package watcher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Superblock magic numbers from statfs(2).
const (
	nfsMagic  = 0x6969
	smbMagic  = 0x517b
	cifsMagic = 0xff534d42
	smb2Magic = 0xfe534d42
	fuseMagic = 0x65735546
)

func detectFilesystemType(path string) FilesystemType {
	path = existingAncestor(path)
	if t := fromMountTable(path); t != FSTypeUnknown {
		return t
	}

	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case nfsMagic:
		return FSTypeNFS
	case smbMagic, cifsMagic, smb2Magic:
		return FSTypeSMB
	case fuseMagic:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}

// fromMountTable finds the longest mount point containing path. It can tell
// sshfs apart from other FUSE mounts, which statfs cannot.
func fromMountTable(path string) FilesystemType {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return FSTypeUnknown
	}
	defer f.Close()

	best, bestType := "", ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mnt := unescapeMount(fields[1])
		if !within(path, mnt) || len(mnt) <= len(best) {
			continue
		}
		best, bestType = mnt, fields[2]
	}
	return classifyMountType(bestType)
}

func within(path, mnt string) bool {
	if mnt == "/" {
		return true
	}
	return path == mnt || strings.HasPrefix(path, mnt+"/")
}

// unescapeMount undoes the octal escapes /proc/mounts uses for spaces.
func unescapeMount(s string) string {
	return strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`).Replace(s)
}

func existingAncestor(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	for p := abs; ; p = filepath.Dir(p) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		if parent := filepath.Dir(p); parent == p {
			return p
		}
	}
}
