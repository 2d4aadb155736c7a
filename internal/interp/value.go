package interp

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

// Kind tags a Value's active representation (§4.13: "tagged-union
// Value").
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindChar
	KindString
	KindVec
	KindMap
	KindPool
	KindStruct
	KindEnum
	KindTuple
	KindArray
	KindClosure
	KindOption
	KindResult
	KindFile
	KindTcpListener
	KindTcpConnection
	KindThreadHandle
	KindTaskHandle
	KindSender
	KindReceiver
	KindShared
	KindInstant
	KindDuration
	KindRng
	KindModule
	KindTypeMarker
	KindEnumConstructor
)

// Value is the interpreter's universal runtime representation. Scalars
// (bool/int/float/char) are held directly; every other kind is a
// pointer into a shared heap cell so aliasing two bindings to the same
// Vec/Map/Pool/struct value observes each other's mutations, matching
// the language's reference-like collection semantics.
type Value struct {
	Kind Kind

	B bool
	I int64
	F float64
	C rune
	S string

	Vec     *VecCell
	Map     *MapCell
	Pool    *PoolCell
	Struct  *StructVal
	Enum    *EnumVal
	Tuple   []Value
	Array   []Value
	Closure *Closure
	Option  *Value // nil means None
	Result  *ResultVal

	File     *FileCell
	Listener *TcpListenerCell
	Conn     *TcpConnCell
	Thread   *ThreadHandle
	Task     *TaskHandle
	Sender   *SenderCell
	Receiver *ReceiverCell
	Shared   *SharedCell
	Instant  *InstantVal
	Duration *DurationVal
	Rng      *RngCell
	Build    *BuildContext

	TypeName string // struct/enum type name, or the named type for a module/type marker
}

// VecCell is the shared mutable backing for a Vec<T> value.
type VecCell struct{ Elems []Value }

// MapCell is the shared mutable backing for a Map<K, V> value. Keys
// are stringified (matching Go's runtime map needs) since Value isn't
// itself comparable once it carries pointer fields; KeyOf renders the
// canonical key.
type MapCell struct {
	Keys   map[string]Value
	Values map[string]Value
}

func NewMapCell() *MapCell {
	return &MapCell{Keys: make(map[string]Value), Values: make(map[string]Value)}
}

// PoolCell backs a Pool<T>: a slot arena addressed by a
// `u64 = (pool_id << 32) | index` handle, per §6. Removed slots go on
// a free list and Insert reuses them. A handle carries no generation,
// so a handle kept across a Remove addresses whatever the slot holds
// now: Get, Set, Remove and Contains detect an empty slot, not a stale
// handle.
type PoolCell struct {
	Id   uint32
	Live []bool
	Data []Value
	free []int
}

var poolIdSeq uint32

func NewPoolCell() *PoolCell {
	poolIdSeq++
	return &PoolCell{Id: poolIdSeq}
}

// Insert places v into a free (or fresh) slot and returns its handle.
func (p *PoolCell) Insert(v Value) uint64 {
	var idx int
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
		p.Live[idx] = true
		p.Data[idx] = v
	} else {
		idx = len(p.Data)
		p.Live = append(p.Live, true)
		p.Data = append(p.Data, v)
	}
	return (uint64(p.Id) << 32) | uint64(uint32(idx))
}

// handleIndex extracts the slot index from a pool handle.
func handleIndex(h uint64) int { return int(uint32(h)) }

func (p *PoolCell) Get(h uint64) (Value, bool) {
	idx := handleIndex(h)
	if idx < 0 || idx >= len(p.Data) || !p.Live[idx] {
		return Value{}, false
	}
	return p.Data[idx], true
}

func (p *PoolCell) Set(h uint64, v Value) bool {
	idx := handleIndex(h)
	if idx < 0 || idx >= len(p.Data) || !p.Live[idx] {
		return false
	}
	p.Data[idx] = v
	return true
}

func (p *PoolCell) Remove(h uint64) (Value, bool) {
	idx := handleIndex(h)
	if idx < 0 || idx >= len(p.Data) || !p.Live[idx] {
		return Value{}, false
	}
	v := p.Data[idx]
	p.Live[idx] = false
	p.Data[idx] = Value{}
	p.free = append(p.free, idx)
	return v, true
}

func (p *PoolCell) Contains(h uint64) bool {
	idx := handleIndex(h)
	return idx >= 0 && idx < len(p.Data) && p.Live[idx]
}

func (p *PoolCell) Len() int {
	n := 0
	for _, live := range p.Live {
		if live {
			n++
		}
	}
	return n
}

// StructVal is a struct instance: field values keyed by name, tagged
// with the declaring type's name for method resolution and
// diagnostics.
type StructVal struct {
	TypeName string
	Fields   map[string]Value
}

// EnumVal is an enum instance: which variant, plus its payload fields
// in declaration order.
type EnumVal struct {
	TypeName string
	Variant  string
	Tag      int
	Fields   []Value
}

// ResultVal backs Result<T, E>: exactly one of Ok/Err is meaningful,
// selected by IsOk.
type ResultVal struct {
	IsOk bool
	Ok   Value
	Err  Value
}

// Closure is a function value: its declared parameters, body
// expression, and the environment snapshot captured at creation time
// (§4.13: "Closure{params, body, captured_env}").
type Closure struct {
	Name   string // "" for an anonymous closure literal
	Params []Param
	Body   ast.Expr
	Env    *Env
}

// Param is a closure/function parameter, independent of internal/ast's
// Param so interp doesn't need to import ast's Mode/TypeExpr machinery
// for a purely-runtime binding.
type Param struct {
	Name string
}

func Unit() Value                 { return Value{Kind: KindUnit} }
func Bool(b bool) Value           { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value           { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value       { return Value{Kind: KindFloat, F: f} }
func Char(c rune) Value           { return Value{Kind: KindChar, C: c} }
func Str(s string) Value          { return Value{Kind: KindString, S: s} }
func NoneValue() Value            { return Value{Kind: KindOption, Option: nil} }
func SomeValue(v Value) Value     { inner := v; return Value{Kind: KindOption, Option: &inner} }

func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindUnit:
		return false
	default:
		return true
	}
}

// KeyOf renders v's canonical map-key string; only scalar kinds are
// valid Map keys in practice, but this never panics on a compound
// value so a misuse surfaces as a wrong-answer diagnostic rather than
// a crash.
func KeyOf(v Value) string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("i:%d", v.I)
	case KindString:
		return "s:" + v.S
	case KindChar:
		return fmt.Sprintf("c:%d", v.C)
	case KindBool:
		return fmt.Sprintf("b:%v", v.B)
	case KindFloat:
		return fmt.Sprintf("f:%v", v.F)
	default:
		return fmt.Sprintf("%p", &v)
	}
}

// String renders v for display (`print`, string interpolation,
// `to_string`).
func (v Value) String() string {
	switch v.Kind {
	case KindUnit:
		return "()"
	case KindBool:
		return fmt.Sprintf("%v", v.B)
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%v", v.F)
	case KindChar:
		return string(v.C)
	case KindString:
		return v.S
	case KindOption:
		if v.Option == nil {
			return "None"
		}
		return "Some(" + v.Option.String() + ")"
	case KindResult:
		if v.Result == nil {
			return "Result(<empty>)"
		}
		if v.Result.IsOk {
			return "Ok(" + v.Result.Ok.String() + ")"
		}
		return "Err(" + v.Result.Err.String() + ")"
	case KindStruct:
		return v.Struct.TypeName + "{...}"
	case KindEnum:
		return v.Enum.TypeName + "." + v.Enum.Variant
	case KindVec:
		return fmt.Sprintf("Vec(len=%d)", len(v.Vec.Elems))
	case KindMap:
		return fmt.Sprintf("Map(len=%d)", len(v.Map.Keys))
	case KindClosure:
		return "<closure>"
	default:
		return fmt.Sprintf("<%d>", v.Kind)
	}
}
