package sqlitekit

/*
#include "sqlite3.h"
*/
import "C"

// CheckpointMode selects how aggressively Checkpoint flushes the WAL.
type CheckpointMode int

const (
	CheckpointPassive CheckpointMode = iota
	CheckpointFull
	CheckpointRestart
	CheckpointTruncate
)

func (m CheckpointMode) cMode() C.int {
	switch m {
	case CheckpointFull:
		return C.SQLITE_CHECKPOINT_FULL
	case CheckpointRestart:
		return C.SQLITE_CHECKPOINT_RESTART
	case CheckpointTruncate:
		return C.SQLITE_CHECKPOINT_TRUNCATE
	default:
		return C.SQLITE_CHECKPOINT_PASSIVE
	}
}

// Checkpoint runs a WAL checkpoint against schema (every attached database,
// if nil) and returns the total number of frames in the WAL log and the
// number successfully checkpointed (§6 "checkpoint(mode, schema?)"). Both
// counts are -1 when the database is not in WAL mode.
func (c *Connection) Checkpoint(mode CheckpointMode, schema *SchemaIdentifier) (walFrames, checkpointedFrames int, err error) {
	c.assertOwner()
	var cname *C.char
	if schema != nil {
		cname = cStr(schema.SQL() + "\x00")
	}
	var nLog, nCkpt C.int
	rc := C.sqlite3_wal_checkpoint_v2(c.db, cname, mode.cMode(), &nLog, &nCkpt)
	if rc != C.SQLITE_OK {
		return 0, 0, libErr(rc, c.db)
	}
	return int(nLog), int(nCkpt), nil
}
