package settings

import (
	"strconv"
)

type value interface {
	String() string
	Set(s string) error
	TypeName() string
}

type field struct {
	name        string
	description string
	def         string
	value       value
}

func (f *field) set(s string) error {
	if err := f.value.Set(s); err != nil {
		return &InvalidValueError{Name: f.name, Value: s, Type: f.value.TypeName()}
	}
	return nil
}

//reset panics if the static default cannot be parsed, which can only happen if a settings declaration is broken
func (f *field) reset() {
	if err := f.value.Set(f.def); err != nil {
		panic("settings: invalid default `" + f.def + "` for " + f.name)
	}
}

type uintValue struct {
	p *uint
}

func (v uintValue) String() string { return strconv.FormatUint(uint64(*v.p), 10) }

func (v uintValue) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return err
	}
	*v.p = uint(n)
	return nil
}

func (v uintValue) TypeName() string { return "positive integer" }

type uint32Value struct {
	p *uint32
}

func (v uint32Value) String() string { return strconv.FormatUint(uint64(*v.p), 10) }

func (v uint32Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*v.p = uint32(n)
	return nil
}

func (v uint32Value) TypeName() string { return "positive integer" }

//int16Value optionally bounds the accepted range, inclusive on both ends
type int16Value struct {
	p        *int16
	min, max int16
}

func (v int16Value) String() string { return strconv.FormatInt(int64(*v.p), 10) }

func (v int16Value) Set(s string) error {
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return err
	}
	if int16(n) < v.min || int16(n) > v.max {
		return strconv.ErrRange
	}
	*v.p = int16(n)
	return nil
}

func (v int16Value) TypeName() string {
	return "integer between " + strconv.Itoa(int(v.min)) + " and " + strconv.Itoa(int(v.max))
}
