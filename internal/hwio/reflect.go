package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// tagOpts is the parsed form of a `hwio:"..."` struct tag.
type tagOpts struct {
	offset      uint64
	hasOffset   bool
	bank        int
	reset       uint64
	hasReset    bool
	rwmask      uint64
	hasRWMask   bool
	size        uint64
	vsize       uint64
	readonly    bool
	writeonly   bool
	wcb         bool
	rcb         bool
}

func parseTag(tag string) (tagOpts, bool) {
	var opts tagOpts
	if tag == "" {
		return opts, false
	}
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, val, hasVal := strings.Cut(tok, "=")
		switch key {
		case "offset":
			opts.hasOffset = true
			opts.offset, _ = strconv.ParseUint(strings.TrimPrefix(val, "0x"), 16, 64)
		case "bank":
			n, _ := strconv.Atoi(val)
			opts.bank = n
		case "reset":
			opts.hasReset = true
			opts.reset, _ = strconv.ParseUint(strings.TrimPrefix(val, "0x"), 16, 64)
		case "rwmask":
			opts.hasRWMask = true
			opts.rwmask, _ = strconv.ParseUint(strings.TrimPrefix(val, "0x"), 16, 64)
		case "size":
			opts.size, _ = strconv.ParseUint(strings.TrimPrefix(val, "0x"), 16, 64)
		case "vsize":
			opts.vsize, _ = strconv.ParseUint(strings.TrimPrefix(val, "0x"), 16, 64)
		case "readonly":
			opts.readonly = true
		case "writeonly":
			opts.writeonly = true
		case "wcb":
			opts.wcb = true
		case "rcb":
			opts.rcb = true
		default:
			if !hasVal {
				// unknown bare flag; ignore for forward-compatibility
			}
		}
	}
	return opts, true
}

type regDesc struct {
	offset uint16
	bank   int
	regPtr any
}

// InitRegs walks v (a pointer to a struct), initializes every hwio-tagged
// Reg8/Mem field (names, reset values, masks) and wires rcb/wcb callbacks
// to the Read<FIELD>/Write<FIELD> methods on v, where <FIELD> is the
// upper-cased field name.
func InitRegs(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("hwio: InitRegs requires a pointer to a struct, got %T", v)
	}
	sv := rv.Elem()
	st := sv.Type()

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, _ := parseTag(tag)
		fv := sv.Field(i)
		if !fv.CanAddr() {
			return fmt.Errorf("hwio: field %s is not addressable", field.Name)
		}

		switch ptr := fv.Addr().Interface().(type) {
		case *Reg8:
			if err := initReg8(rv, field.Name, ptr, opts); err != nil {
				return err
			}
		case *Mem:
			if err := initMem(rv, field.Name, ptr, opts); err != nil {
				return err
			}
		default:
			return fmt.Errorf("hwio: unsupported hwio-tagged field %s of type %s", field.Name, field.Type)
		}
	}
	return nil
}

// MustInitRegs is InitRegs, panicking on error. Register layouts are static
// and wrong tags are a programming error caught in development, not a
// runtime condition a production build should try to recover from.
func MustInitRegs(v any) {
	if err := InitRegs(v); err != nil {
		panic(err)
	}
}

func initReg8(owner reflect.Value, fieldName string, reg *Reg8, opts tagOpts) error {
	reg.Name = fieldName

	if opts.hasReset {
		if opts.reset > 0xFF {
			return fmt.Errorf("hwio: reset value 0x%x for %s does not fit in 8 bits", opts.reset, fieldName)
		}
		reg.Value = uint8(opts.reset)
	}
	if opts.hasRWMask {
		if opts.rwmask > 0xFF {
			return fmt.Errorf("hwio: rwmask value 0x%x for %s does not fit in 8 bits", opts.rwmask, fieldName)
		}
		// rwmask names the *writable* bits; RoMask (used by Reg8.write) is
		// the complementary read-only mask.
		reg.RoMask = ^uint8(opts.rwmask)
	}
	if opts.readonly {
		reg.Flags |= RegFlagReadOnly
	}
	if opts.writeonly {
		reg.Flags |= RegFlagWriteOnly
	}

	upper := strings.ToUpper(fieldName)
	if opts.wcb {
		m := owner.MethodByName("Write" + upper)
		if !m.IsValid() {
			return fmt.Errorf("hwio: no Write%s method for field %s", upper, fieldName)
		}
		cb, ok := m.Interface().(func(uint8, uint8))
		if !ok {
			return fmt.Errorf("hwio: Write%s has wrong signature, want func(old, val uint8)", upper)
		}
		reg.WriteCb = cb
	}
	if opts.rcb {
		m := owner.MethodByName("Read" + upper)
		if !m.IsValid() {
			return fmt.Errorf("hwio: no Read%s method for field %s", upper, fieldName)
		}
		cb, ok := m.Interface().(func(uint8) uint8)
		if !ok {
			return fmt.Errorf("hwio: Read%s has wrong signature, want func(val uint8) uint8", upper)
		}
		reg.ReadCb = cb
	}
	return nil
}

func initMem(owner reflect.Value, fieldName string, mem *Mem, opts tagOpts) error {
	mem.Name = fieldName
	if mem.Data == nil && opts.size > 0 {
		mem.Data = make([]byte, opts.size)
	}
	mem.VSize = int(opts.vsize)
	if mem.VSize == 0 {
		mem.VSize = len(mem.Data)
	}
	mem.Flags |= MemFlag8

	if opts.wcb {
		upper := strings.ToUpper(fieldName)
		m := owner.MethodByName("Write" + upper)
		if !m.IsValid() {
			return fmt.Errorf("hwio: no Write%s method for field %s", upper, fieldName)
		}
		cb, ok := m.Interface().(func(uint16, int))
		if !ok {
			return fmt.Errorf("hwio: Write%s has wrong signature, want func(addr uint16, n int)", upper)
		}
		mem.WriteCb = cb
	}
	return nil
}

// bankGetRegs returns the hwio-tagged, offset-bearing fields of v that
// belong to bankNum (default bank is 0), in struct-declaration order.
func bankGetRegs(v any, bankNum int) ([]regDesc, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("hwio: bankGetRegs requires a pointer to a struct, got %T", v)
	}
	sv := rv.Elem()
	st := sv.Type()

	var out []regDesc
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, _ := parseTag(tag)
		if !opts.hasOffset || opts.bank != bankNum {
			continue
		}
		fv := sv.Field(i)
		if !fv.CanAddr() {
			return nil, fmt.Errorf("hwio: field %s is not addressable", field.Name)
		}
		out = append(out, regDesc{
			offset: uint16(opts.offset),
			bank:   opts.bank,
			regPtr: fv.Addr().Interface(),
		})
	}
	return out, nil
}
