package catalog

import "time"

// nowWall returns nanoseconds since the Unix epoch for stamping a message's
// TimestampNs field at construction or mutation, per spec §3.
func nowWall() int64 { return time.Now().UnixNano() }
