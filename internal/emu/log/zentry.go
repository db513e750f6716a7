package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

// LogContext lets a collaborator inject extra fields into every EntryZ
// emitted while it is registered, without each call site having to know
// about it (e.g. "current scanline/x" while debugging the PPU).
type LogContext interface {
	AddLogContext(e *EntryZ)
}

var (
	contextsMu sync.Mutex
	contexts   []LogContext
)

func AddLogContext(c LogContext) {
	contextsMu.Lock()
	contexts = append(contexts, c)
	contextsMu.Unlock()
}

const maxZFields = 16

// EntryZ is a fast, allocation-light log entry builder. It is nil-safe:
// every chain method is a no-op on a nil receiver, so a disabled module
// can hand back nil from DebugZ/InfoZ/... and callers chain through it
// for free.
type EntryZ struct {
	mod   Module
	lvl   Level
	msg   string
	zfbuf [maxZFields]ZField
	zfidx int
}

var entryzPool = sync.Pool{New: func() any { return &EntryZ{} }}

func NewEntryZ() *EntryZ {
	e := entryzPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (e *EntryZ) push(f ZField) *EntryZ {
	if e == nil {
		return nil
	}
	if e.zfidx < len(e.zfbuf) {
		e.zfbuf[e.zfidx] = f
		e.zfidx++
	}
	return e
}

func (e *EntryZ) Bool(key string, v bool) *EntryZ {
	return e.push(ZField{Type: FieldTypeBool, Key: key, Boolean: v})
}

func (e *EntryZ) String(key string, v string) *EntryZ {
	return e.push(ZField{Type: FieldTypeString, Key: key, String: v})
}

func (e *EntryZ) Hex8(key string, v uint8) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex8, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Hex16(key string, v uint16) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex16, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Hex32(key string, v uint32) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex32, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Hex64(key string, v uint64) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex64, Key: key, Integer: v})
}

func (e *EntryZ) Int(key string, v int) *EntryZ {
	return e.push(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(int64(v))})
}

func (e *EntryZ) Int64(key string, v int64) *EntryZ {
	return e.push(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Uint16(key string, v uint16) *EntryZ {
	return e.push(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Uint32(key string, v uint32) *EntryZ {
	return e.push(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Uint64(key string, v uint64) *EntryZ {
	return e.push(ZField{Type: FieldTypeUint, Key: key, Integer: v})
}

func (e *EntryZ) Duration(key string, v time.Duration) *EntryZ {
	return e.push(ZField{Type: FieldTypeDuration, Key: key, Duration: v})
}

func (e *EntryZ) Error(key string, v error) *EntryZ {
	return e.push(ZField{Type: FieldTypeError, Key: key, Error: v})
}

func (e *EntryZ) Blob(key string, v []byte) *EntryZ {
	return e.push(ZField{Type: FieldTypeBlob, Key: key, Blob: v})
}

func (e *EntryZ) Stringer(key string, v fmt.Stringer) *EntryZ {
	return e.push(ZField{Type: FieldTypeStringer, Key: key, Interface: v})
}

// End flushes the entry to the underlying logger and returns it to the pool.
func (e *EntryZ) End() {
	if e == nil {
		return
	}

	fields := make(logrus.Fields, e.zfidx+1)
	for _, c := range contexts {
		c.AddLogContext(e)
	}
	for i := range e.zfbuf[:e.zfidx] {
		fields[e.zfbuf[i].Key] = e.zfbuf[i].Value()
	}
	fields["_mod"] = modNames[e.mod]

	entry := logrus.StandardLogger().WithFields(fields)
	switch e.lvl {
	case DebugLevel:
		entry.Debug(e.msg)
	case InfoLevel:
		entry.Info(e.msg)
	case WarnLevel:
		entry.Warn(e.msg)
	case ErrorLevel:
		entry.Error(e.msg)
	case FatalLevel:
		entry.Fatal(e.msg)
	case PanicLevel:
		entry.Panic(e.msg)
	}

	entryzPool.Put(e)
}
