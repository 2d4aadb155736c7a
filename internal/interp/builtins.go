// §4.13a's interpreter stdlib surface: native Go implementations of
// every builtin generic type's method set named in §4.6's stub
// registry list, grounded directly on internal/stdlib/builtins.go's
// catalog (the same names internal/codegen's dispatch table resolves
// against for the native backend).
package interp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// builtinCall dispatches a method call on a non-user-defined receiver
// to its native implementation. The bool return distinguishes "no such
// builtin method" (caller should report its own no-method diagnostic)
// from a builtin that ran and may have failed.
func (in *Interp) builtinCall(recv Value, name string, args []Value) (Value, bool, error) {
	switch recv.Kind {
	case KindVec:
		return in.vecMethod(recv, name, args)
	case KindMap:
		return mapMethod(recv, name, args)
	case KindPool:
		return poolMethod(recv, name, args)
	case KindString:
		return stringMethod(recv, name, args)
	case KindOption:
		return optionMethod(recv, name, args)
	case KindResult:
		return resultMethod(recv, name, args)
	case KindFile:
		return fileMethod(recv, name, args)
	case KindTcpListener:
		return listenerMethod(recv, name, args)
	case KindTcpConnection:
		return connMethod(recv, name, args)
	case KindSender:
		return senderMethod(recv, name, args)
	case KindReceiver:
		return receiverMethod(recv, name, args)
	case KindShared:
		return sharedMethod(recv, name, args)
	case KindInstant:
		return instantMethod(recv, name, args)
	case KindDuration:
		return durationMethod(recv, name, args)
	case KindRng:
		return rngMethod(recv, name, args)
	case KindThreadHandle:
		return threadHandleMethod(recv, name, args)
	case KindTaskHandle:
		return taskHandleMethod(recv, name, args)
	case KindModule:
		return buildCtxMethod(recv, name, args)
	default:
		return Value{}, false, nil
	}
}

func threadHandleMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "join":
		v, err := joinThread(recv.Thread)
		return v, true, err
	default:
		return Value{}, false, nil
	}
}

func taskHandleMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "cancel":
		recv.Task.Cancel()
		return Unit(), true, nil
	case "is_cancelled":
		return Bool(recv.Task.IsCancelled()), true, nil
	case "join":
		r := <-recv.Task.done
		return r.value, true, r.err
	default:
		return Value{}, false, nil
	}
}

func (in *Interp) vecMethod(recv Value, name string, args []Value) (Value, bool, error) {
	vc := recv.Vec
	switch name {
	case "push":
		vc.Elems = append(vc.Elems, args[0])
		return Unit(), true, nil
	case "pop":
		if len(vc.Elems) == 0 {
			return NoneValue(), true, nil
		}
		last := vc.Elems[len(vc.Elems)-1]
		vc.Elems = vc.Elems[:len(vc.Elems)-1]
		return SomeValue(last), true, nil
	case "get":
		i := args[0].I
		if i < 0 || i >= int64(len(vc.Elems)) {
			return NoneValue(), true, nil
		}
		return SomeValue(vc.Elems[i]), true, nil
	case "set":
		i := args[0].I
		if i < 0 || i >= int64(len(vc.Elems)) {
			return Value{}, true, fmt.Errorf("interp: Vec.set index %d out of range", i)
		}
		vc.Elems[i] = args[1]
		return Unit(), true, nil
	case "insert":
		i := args[0].I
		vc.Elems = append(vc.Elems, Value{})
		copy(vc.Elems[i+1:], vc.Elems[i:])
		vc.Elems[i] = args[1]
		return Unit(), true, nil
	case "remove":
		i := args[0].I
		if i < 0 || i >= int64(len(vc.Elems)) {
			return Value{}, true, fmt.Errorf("interp: Vec.remove index %d out of range", i)
		}
		v := vc.Elems[i]
		vc.Elems = append(vc.Elems[:i], vc.Elems[i+1:]...)
		return v, true, nil
	case "len":
		return Int(int64(len(vc.Elems))), true, nil
	case "is_empty":
		return Bool(len(vc.Elems) == 0), true, nil
	case "clear":
		vc.Elems = nil
		return Unit(), true, nil
	case "contains":
		for _, e := range vc.Elems {
			if eq, _ := evalEq(e, args[0]); eq.B {
				return Bool(true), true, nil
			}
		}
		return Bool(false), true, nil
	case "iter":
		return recv, true, nil
	case "map":
		cl := args[0].Closure
		out := make([]Value, len(vc.Elems))
		for i, e := range vc.Elems {
			v, err := in.callClosure(cl, []Value{e})
			if err != nil {
				return Value{}, true, err
			}
			out[i] = v
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: out}}, true, nil
	case "filter":
		cl := args[0].Closure
		var out []Value
		for _, e := range vc.Elems {
			v, err := in.callClosure(cl, []Value{e})
			if err != nil {
				return Value{}, true, err
			}
			if v.Truthy() {
				out = append(out, e)
			}
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: out}}, true, nil
	case "fold":
		cl := args[1].Closure
		acc := args[0]
		for _, e := range vc.Elems {
			v, err := in.callClosure(cl, []Value{acc, e})
			if err != nil {
				return Value{}, true, err
			}
			acc = v
		}
		return acc, true, nil
	case "enumerate":
		out := make([]Value, len(vc.Elems))
		for i, e := range vc.Elems {
			out[i] = Value{Kind: KindTuple, Tuple: []Value{Int(int64(i)), e}}
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: out}}, true, nil
	case "zip":
		other := args[0]
		if other.Kind != KindVec {
			return Value{}, true, fmt.Errorf("interp: zip expects a Vec argument")
		}
		n := len(vc.Elems)
		if len(other.Vec.Elems) < n {
			n = len(other.Vec.Elems)
		}
		out := make([]Value, n)
		for i := 0; i < n; i++ {
			out[i] = Value{Kind: KindTuple, Tuple: []Value{vc.Elems[i], other.Vec.Elems[i]}}
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: out}}, true, nil
	case "has_next":
		return Bool(len(vc.Elems) > 0), true, nil
	case "next":
		if len(vc.Elems) == 0 {
			return NoneValue(), true, nil
		}
		head := vc.Elems[0]
		vc.Elems = vc.Elems[1:]
		return SomeValue(head), true, nil
	case "to_json":
		return jsonEncode(recv)
	default:
		return Value{}, false, nil
	}
}

func mapMethod(recv Value, name string, args []Value) (Value, bool, error) {
	mc := recv.Map
	switch name {
	case "insert":
		key := KeyOf(args[0])
		prev, had := mc.Values[key]
		mc.Keys[key] = args[0]
		mc.Values[key] = args[1]
		if had {
			return SomeValue(prev), true, nil
		}
		return NoneValue(), true, nil
	case "get":
		key := KeyOf(args[0])
		if v, ok := mc.Values[key]; ok {
			return SomeValue(v), true, nil
		}
		return NoneValue(), true, nil
	case "remove":
		key := KeyOf(args[0])
		v, ok := mc.Values[key]
		delete(mc.Values, key)
		delete(mc.Keys, key)
		if !ok {
			return NoneValue(), true, nil
		}
		return SomeValue(v), true, nil
	case "contains_key":
		_, ok := mc.Values[KeyOf(args[0])]
		return Bool(ok), true, nil
	case "len":
		return Int(int64(len(mc.Values))), true, nil
	case "is_empty":
		return Bool(len(mc.Values) == 0), true, nil
	case "clear":
		mc.Keys = make(map[string]Value)
		mc.Values = make(map[string]Value)
		return Unit(), true, nil
	case "keys":
		out := sortedKeys(mc)
		elems := make([]Value, len(out))
		for i, k := range out {
			elems[i] = mc.Keys[k]
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: elems}}, true, nil
	case "values":
		out := sortedKeys(mc)
		elems := make([]Value, len(out))
		for i, k := range out {
			elems[i] = mc.Values[k]
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: elems}}, true, nil
	default:
		return Value{}, false, nil
	}
}

// sortedKeys returns mc's keys in a stable order so keys()/values()
// are deterministic across calls, matching §8's determinism invariants.
func sortedKeys(mc *MapCell) []string {
	out := make([]string, 0, len(mc.Values))
	for k := range mc.Values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func poolMethod(recv Value, name string, args []Value) (Value, bool, error) {
	pc := recv.Pool
	switch name {
	case "insert":
		return Int(int64(pc.Insert(args[0]))), true, nil
	case "get":
		if v, ok := pc.Get(uint64(args[0].I)); ok {
			return SomeValue(v), true, nil
		}
		return NoneValue(), true, nil
	case "remove":
		if v, ok := pc.Remove(uint64(args[0].I)); ok {
			return SomeValue(v), true, nil
		}
		return NoneValue(), true, nil
	case "contains":
		return Bool(pc.Contains(uint64(args[0].I))), true, nil
	case "len":
		return Int(int64(pc.Len())), true, nil
	case "clear":
		*pc = *NewPoolCell()
		return Unit(), true, nil
	default:
		return Value{}, false, nil
	}
}

func stringMethod(recv Value, name string, args []Value) (Value, bool, error) {
	s := recv.S
	switch name {
	case "len":
		return Int(int64(len([]rune(s)))), true, nil
	case "is_empty":
		return Bool(s == ""), true, nil
	case "push_str":
		return Str(s + args[0].S), true, nil
	case "concat":
		return Str(s + args[0].S), true, nil
	case "eq":
		return Bool(s == args[0].S), true, nil
	case "contains":
		return Bool(strings.Contains(s, args[0].S)), true, nil
	case "split":
		parts := strings.Split(s, args[0].S)
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = Str(p)
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: elems}}, true, nil
	case "trim":
		return Str(strings.TrimSpace(s)), true, nil
	case "to_upper":
		return Str(strings.ToUpper(s)), true, nil
	case "to_lower":
		return Str(strings.ToLower(s)), true, nil
	default:
		return Value{}, false, nil
	}
}

func optionMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "is_some":
		return Bool(recv.Option != nil), true, nil
	case "is_none":
		return Bool(recv.Option == nil), true, nil
	case "unwrap":
		if recv.Option == nil {
			return Value{}, true, fmt.Errorf("interp: unwrap called on None")
		}
		return *recv.Option, true, nil
	case "unwrap_or":
		if recv.Option == nil {
			return args[0], true, nil
		}
		return *recv.Option, true, nil
	case "expect":
		if recv.Option == nil {
			msg := "expect called on None"
			if len(args) > 0 {
				msg = args[0].String()
			}
			return Value{}, true, fmt.Errorf("interp: %s", msg)
		}
		return *recv.Option, true, nil
	default:
		return Value{}, false, nil
	}
}

func resultMethod(recv Value, name string, args []Value) (Value, bool, error) {
	r := recv.Result
	switch name {
	case "is_ok":
		return Bool(r.IsOk), true, nil
	case "is_err":
		return Bool(!r.IsOk), true, nil
	case "unwrap":
		if !r.IsOk {
			return Value{}, true, fmt.Errorf("interp: unwrap called on Err(%s)", r.Err.String())
		}
		return r.Ok, true, nil
	case "unwrap_err":
		if r.IsOk {
			return Value{}, true, fmt.Errorf("interp: unwrap_err called on Ok(%s)", r.Ok.String())
		}
		return r.Err, true, nil
	case "unwrap_or":
		if !r.IsOk {
			return args[0], true, nil
		}
		return r.Ok, true, nil
	default:
		return Value{}, false, nil
	}
}

func fileMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "read_to_string":
		s, err := recv.File.ReadToString()
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Str(s)}}, true, nil
	case "write":
		n, err := recv.File.Write(args[0].S)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Int(int64(n))}}, true, nil
	case "close":
		return Unit(), true, recv.File.Close()
	default:
		return Value{}, false, nil
	}
}

func listenerMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "accept":
		c, err := recv.Listener.Accept()
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Value{Kind: KindTcpConnection, Conn: c}}}, true, nil
	case "local_addr":
		return Str(recv.Listener.LocalAddr()), true, nil
	case "close":
		return Unit(), true, recv.Listener.Close()
	default:
		return Value{}, false, nil
	}
}

func connMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "read":
		max := 4096
		if len(args) > 0 {
			max = int(args[0].I)
		}
		s, err := recv.Conn.Read(max)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Str(s)}}, true, nil
	case "write":
		n, err := recv.Conn.Write(args[0].S)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Int(int64(n))}}, true, nil
	case "close":
		return Unit(), true, recv.Conn.Close()
	default:
		return Value{}, false, nil
	}
}

func senderMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "send":
		return Unit(), true, recv.Sender.Send(args[0])
	case "close":
		recv.Sender.Close()
		return Unit(), true, nil
	default:
		return Value{}, false, nil
	}
}

func receiverMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "recv":
		v, ok := recv.Receiver.Recv()
		if !ok {
			return NoneValue(), true, nil
		}
		return SomeValue(v), true, nil
	case "close":
		return Unit(), true, nil
	default:
		return Value{}, false, nil
	}
}

func sharedMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "get":
		return recv.Shared.Get(), true, nil
	case "set":
		recv.Shared.Set(args[0])
		return Unit(), true, nil
	default:
		return Value{}, false, nil
	}
}

func instantMethod(recv Value, name string, args []Value) (Value, bool, error) {
	if name == "elapsed" {
		return Value{Kind: KindDuration, Duration: recv.Instant.Elapsed()}, true, nil
	}
	return Value{}, false, nil
}

func durationMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "as_secs":
		return Int(recv.Duration.Secs()), true, nil
	case "as_millis":
		return Int(recv.Duration.Millis()), true, nil
	case "as_nanos":
		return Int(recv.Duration.Nanos()), true, nil
	default:
		return Value{}, false, nil
	}
}

func rngMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch name {
	case "next_i64":
		return Int(recv.Rng.NextI64()), true, nil
	case "next_f64":
		return Float(recv.Rng.NextF64()), true, nil
	case "range":
		return Int(recv.Rng.Range(args[0].I, args[1].I)), true, nil
	default:
		return Value{}, false, nil
	}
}

// jsonEncode implements §4.13a's stdlib/json encode against the
// interpreter's own Value representation (there is no intermediate
// struct to marshal through; toJSONAny recursively lowers a Value into
// plain Go data encoding/json already knows how to serialize).
func jsonEncode(v Value) (Value, bool, error) {
	b, err := json.Marshal(toJSONAny(v))
	if err != nil {
		return Value{}, true, err
	}
	return Str(string(b)), true, nil
}

func toJSONAny(v Value) any {
	switch v.Kind {
	case KindUnit:
		return nil
	case KindBool:
		return v.B
	case KindInt:
		return v.I
	case KindFloat:
		return v.F
	case KindChar:
		return string(v.C)
	case KindString:
		return v.S
	case KindVec:
		out := make([]any, len(v.Vec.Elems))
		for i, e := range v.Vec.Elems {
			out[i] = toJSONAny(e)
		}
		return out
	case KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = toJSONAny(e)
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Map.Values))
		for k, kv := range v.Map.Keys {
			out[kv.String()] = toJSONAny(v.Map.Values[k])
		}
		return out
	case KindStruct:
		out := make(map[string]any, len(v.Struct.Fields))
		for k, fv := range v.Struct.Fields {
			out[k] = toJSONAny(fv)
		}
		return out
	case KindOption:
		if v.Option == nil {
			return nil
		}
		return toJSONAny(*v.Option)
	default:
		return v.String()
	}
}

// fromJSONAny lifts a decoded encoding/json value back into a Value;
// JSON has no struct/enum distinction of its own, so a decoded object
// always becomes a Map<string, T>, not a StructVal — callers that need
// a typed struct back construct one from the map themselves.
func fromJSONAny(a any) Value {
	switch t := a.(type) {
	case nil:
		return NoneValue()
	case bool:
		return Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case string:
		return Str(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = fromJSONAny(e)
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: elems}}
	case map[string]any:
		mc := NewMapCell()
		for k, e := range t {
			mc.Keys[KeyOf(Str(k))] = Str(k)
			mc.Values[KeyOf(Str(k))] = fromJSONAny(e)
		}
		return Value{Kind: KindMap, Map: mc}
	default:
		return NoneValue()
	}
}

func jsonDecode(s string) (Value, error) {
	var a any
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return Value{}, err
	}
	return fromJSONAny(a), nil
}

// callFreeBuiltin dispatches the handful of stdlib entries that have
// no natural receiver (§4.6's receiver-less dispatch entries: json
// encode/decode, the random/file/net constructors).
func callFreeBuiltin(name string, args []Value) (Value, bool, error) {
	switch name {
	case "json_encode":
		v, _, err := jsonEncode(args[0])
		return v, true, err
	case "json_decode":
		v, err := jsonDecode(args[0].S)
		return v, true, err
	case "file_open":
		write := len(args) > 1 && args[1].Truthy()
		fc, err := OpenFile(args[0].S, write)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Value{Kind: KindFile, File: fc}}}, true, nil
	case "tcp_listen":
		ln, err := Listen(args[0].S)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Value{Kind: KindTcpListener, Listener: ln}}}, true, nil
	case "tcp_dial":
		c, err := Dial(args[0].S)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Value{Kind: KindTcpConnection, Conn: c}}}, true, nil
	case "channel":
		cap := 0
		if len(args) > 0 {
			cap = int(args[0].I)
		}
		s, r := NewChannel(cap)
		return Value{Kind: KindTuple, Tuple: []Value{{Kind: KindSender, Sender: s}, {Kind: KindReceiver, Receiver: r}}}, true, nil
	case "shared":
		return Value{Kind: KindShared, Shared: NewShared(args[0])}, true, nil
	case "instant_now":
		return Value{Kind: KindInstant, Instant: Now()}, true, nil
	case "rng_new":
		seed := int64(1)
		if len(args) > 0 {
			seed = args[0].I
		}
		return Value{Kind: KindRng, Rng: NewRng(seed)}, true, nil
	default:
		return Value{}, false, nil
	}
}

