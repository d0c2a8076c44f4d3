//go:build linux

package mmfile

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// AttachShared attaches the System V shared memory segment identified by
// key. With size > 0 the segment is created when it does not exist yet;
// with size == 0 it must already exist.
//
// The returned cleanup detaches the segment. The segment itself survives
// until RemoveShared.
func AttachShared(key int, size int) ([]byte, func() error, error) {
	flag := 0o600
	if size > 0 {
		flag |= unix.IPC_CREAT
	}
	id, err := unix.SysvShmGet(key, size, flag)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: shmget key %d: %w", key, err)
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: shmat key %d: %w", key, err)
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		err := unix.SysvShmDetach(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			return nil
		}
		return err
	}
	return data, cleanup, nil
}

// RemoveShared marks the shared memory segment identified by key for
// destruction once the last process detaches.
func RemoveShared(key int) error {
	id, err := unix.SysvShmGet(key, 0, 0)
	if err != nil {
		return fmt.Errorf("mmfile: shmget key %d: %w", key, err)
	}
	if _, err := unix.SysvShmCtl(id, unix.IPC_RMID, nil); err != nil {
		return fmt.Errorf("mmfile: remove key %d: %w", key, err)
	}
	return nil
}
