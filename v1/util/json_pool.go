// Copyright 2025 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
)

// bufferPool provides a pool of reusable byte buffers for JSON and YAML
// encoding.
var bufferPool = NewSyncPool[bytes.Buffer]()

// getBuffer retrieves an empty buffer from the pool.
func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get()
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool after resetting it.
func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}
