// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import "sync/atomic"

// creationCounter is the process-wide, monotonically increasing source of
// CreationIndex values. It never resets for the lifetime of the process and
// exists purely to give records sortable precision beyond the millisecond
// resolution of Creation.
//
// A distributed store that needs creation ordering across processes should
// override CreationIndex with its own logical clock rather than rely on
// this counter.
var creationCounter int64

// nextCreationIndex returns the next value from the process-wide counter.
func nextCreationIndex() int64 {
	return atomic.AddInt64(&creationCounter, 1)
}
