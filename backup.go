package sqlitekit

/*
#include "sqlite3.h"
*/
import "C"

// Backup copies the database open on c into the database open on to, one
// page-batch at a time, calling afterInit once the backup handle is ready
// and afterStep after every batch (both may be nil). §6 "backup(to:
// other, after_init?, after_step?)".
func (c *Connection) Backup(to *Connection, afterInit, afterStep func()) error {
	c.assertOwner()
	to.assertOwner()

	dstName := cStr("main\x00")
	srcName := cStr("main\x00")
	backup := C.sqlite3_backup_init(to.db, dstName, c.db, srcName)
	if backup == nil {
		return libErr(C.sqlite3_errcode(to.db), to.db)
	}
	if afterInit != nil {
		afterInit()
	}

	const pagesPerStep = 100
	for {
		rc := C.sqlite3_backup_step(backup, pagesPerStep)
		if afterStep != nil {
			afterStep()
		}
		if rc == C.SQLITE_DONE {
			break
		}
		if rc != C.SQLITE_OK && rc != C.SQLITE_BUSY && rc != C.SQLITE_LOCKED {
			C.sqlite3_backup_finish(backup)
			return libErr(rc, to.db)
		}
	}
	if rc := C.sqlite3_backup_finish(backup); rc != C.SQLITE_OK {
		return libErr(rc, to.db)
	}
	return nil
}
