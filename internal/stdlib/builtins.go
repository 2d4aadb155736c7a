package stdlib

// registerBuiltins populates the catalog with the fixed set of builtin
// generics §4.6 names. Every source_file below is a synthetic stdlib
// path (no literal .rk source backs these yet — the stub loader is
// specified, not the stub *files*, per §6), matching the "stub file"
// framing the registry format describes.
func registerBuiltins() {
	registerVec()
	registerMap()
	registerPool()
	registerString()
	registerOption()
	registerResult()
	registerFile()
	registerNet()
	registerChannel()
	registerShared()
	registerTime()
	registerRng()
}

func registerVec() {
	Register(&StubType{
		Name:       "Vec",
		Kind:       StubStruct,
		TypeParams: []string{"T"},
		Doc:        "A growable, heap-allocated contiguous sequence of T.",
		SourceFile: "stdlib/collections/vec.rk",
		Methods: []StubMethod{
			{Name: "push", TakesSelf: true, Params: []Param{{Name: "value", Type: T("T")}}, Ret: T("()"), Doc: "Appends value to the end."},
			{Name: "pop", TakesSelf: true, Ret: G("Option", T("T")), Doc: "Removes and returns the last element, if any."},
			{Name: "get", TakesSelf: true, Params: []Param{{Name: "index", Type: T("i64")}}, Ret: G("Option", T("T"))},
			{Name: "set", TakesSelf: true, Params: []Param{{Name: "index", Type: T("i64")}, {Name: "value", Type: T("T")}}, Ret: T("()")},
			{Name: "insert", TakesSelf: true, Params: []Param{{Name: "index", Type: T("i64")}, {Name: "value", Type: T("T")}}, Ret: T("()")},
			{Name: "remove", TakesSelf: true, Params: []Param{{Name: "index", Type: T("i64")}}, Ret: T("T")},
			{Name: "len", TakesSelf: true, Ret: T("i64")},
			{Name: "is_empty", TakesSelf: true, Ret: T("bool")},
			{Name: "clear", TakesSelf: true, Ret: T("()")},
			{Name: "contains", TakesSelf: true, Params: []Param{{Name: "value", Type: T("T")}}, Ret: T("bool")},
			{Name: "iter", TakesSelf: true, Ret: G("Iterator", T("T"))},
		},
	})
}

func registerMap() {
	Register(&StubType{
		Name:       "Map",
		Kind:       StubStruct,
		TypeParams: []string{"K", "V"},
		Doc:        "A hash map from K to V.",
		SourceFile: "stdlib/collections/map.rk",
		Methods: []StubMethod{
			{Name: "insert", TakesSelf: true, Params: []Param{{Name: "key", Type: T("K")}, {Name: "value", Type: T("V")}}, Ret: G("Option", T("V"))},
			{Name: "get", TakesSelf: true, Params: []Param{{Name: "key", Type: T("K")}}, Ret: G("Option", T("V"))},
			{Name: "remove", TakesSelf: true, Params: []Param{{Name: "key", Type: T("K")}}, Ret: G("Option", T("V"))},
			{Name: "contains_key", TakesSelf: true, Params: []Param{{Name: "key", Type: T("K")}}, Ret: T("bool")},
			{Name: "len", TakesSelf: true, Ret: T("i64")},
			{Name: "is_empty", TakesSelf: true, Ret: T("bool")},
			{Name: "clear", TakesSelf: true, Ret: T("()")},
			{Name: "keys", TakesSelf: true, Ret: G("Vec", T("K"))},
			{Name: "values", TakesSelf: true, Ret: G("Vec", T("V"))},
		},
	})
}

func registerPool() {
	Register(&StubType{
		Name:       "Pool",
		Kind:       StubStruct,
		TypeParams: []string{"T"},
		Doc:        "A generation-tagged slot arena yielding stale-detecting Handle<T> values (§3 Handle).",
		SourceFile: "stdlib/collections/pool.rk",
		Methods: []StubMethod{
			{Name: "insert", TakesSelf: true, Params: []Param{{Name: "value", Type: T("T")}}, Ret: G("Handle", T("T"))},
			{Name: "get", TakesSelf: true, Params: []Param{{Name: "handle", Type: G("Handle", T("T"))}}, Ret: G("Option", T("T")), Doc: "Lowered to PoolCheckedAccess by the MIR builder (§4.10)."},
			{Name: "remove", TakesSelf: true, Params: []Param{{Name: "handle", Type: G("Handle", T("T"))}}, Ret: G("Option", T("T")), Doc: "Bumps the slot's generation, invalidating every outstanding Handle."},
			{Name: "contains", TakesSelf: true, Params: []Param{{Name: "handle", Type: G("Handle", T("T"))}}, Ret: T("bool")},
			{Name: "len", TakesSelf: true, Ret: T("i64")},
			{Name: "clear", TakesSelf: true, Ret: T("()")},
		},
	})
}

func registerString() {
	Register(&StubType{
		Name:       "string",
		Kind:       StubStruct,
		Doc:        "An opaque, pointer-sized UTF-8 string handle (§4.8 layout).",
		SourceFile: "stdlib/core/string.rk",
		Methods: []StubMethod{
			{Name: "len", TakesSelf: true, Ret: T("i64")},
			{Name: "is_empty", TakesSelf: true, Ret: T("bool")},
			{Name: "push_str", TakesSelf: true, Params: []Param{{Name: "other", Type: T("string")}}, Ret: T("()"), Doc: "Appends in place. §4.11 pass 3 rewrites `s = s.concat(other)`, not calls to this method, into string_append."},
			{Name: "concat", TakesSelf: true, Params: []Param{{Name: "other", Type: T("string")}}, Ret: T("string")},
			{Name: "eq", TakesSelf: true, Params: []Param{{Name: "other", Type: T("string")}}, Ret: T("bool")},
			{Name: "contains", TakesSelf: true, Params: []Param{{Name: "needle", Type: T("string")}}, Ret: T("bool")},
			{Name: "split", TakesSelf: true, Params: []Param{{Name: "sep", Type: T("string")}}, Ret: G("Vec", T("string"))},
			{Name: "trim", TakesSelf: true, Ret: T("string")},
			{Name: "to_upper", TakesSelf: true, Ret: T("string")},
			{Name: "to_lower", TakesSelf: true, Ret: T("string")},
		},
	})
}

func registerOption() {
	Register(&StubType{
		Name:       "Option",
		Kind:       StubEnum,
		TypeParams: []string{"T"},
		Doc:        "Some(T) or None.",
		SourceFile: "stdlib/core/option.rk",
		Variants: []StubVariant{
			{Name: "Some", Fields: []StubField{{Name: "0", Type: T("T")}}},
			{Name: "None"},
		},
		Methods: []StubMethod{
			{Name: "is_some", TakesSelf: true, Ret: T("bool")},
			{Name: "is_none", TakesSelf: true, Ret: T("bool")},
			{Name: "unwrap", TakesSelf: true, Ret: T("T"), Doc: "Runtime error \"unwrap of None\" (§7) if this is None."},
			{Name: "unwrap_or", TakesSelf: true, Params: []Param{{Name: "default", Type: T("T")}}, Ret: T("T")},
			{Name: "expect", TakesSelf: true, Params: []Param{{Name: "msg", Type: T("string")}}, Ret: T("T")},
		},
	})
}

func registerResult() {
	Register(&StubType{
		Name:       "Result",
		Kind:       StubEnum,
		TypeParams: []string{"Ok", "Err"},
		Doc:        "Ok(Ok) or Err(Err); `try` (§4.10) propagates the Err arm early.",
		SourceFile: "stdlib/core/result.rk",
		Variants: []StubVariant{
			{Name: "Ok", Fields: []StubField{{Name: "0", Type: T("Ok")}}},
			{Name: "Err", Fields: []StubField{{Name: "0", Type: T("Err")}}},
		},
		Methods: []StubMethod{
			{Name: "is_ok", TakesSelf: true, Ret: T("bool")},
			{Name: "is_err", TakesSelf: true, Ret: T("bool")},
			{Name: "unwrap", TakesSelf: true, Ret: T("Ok")},
			{Name: "unwrap_err", TakesSelf: true, Ret: T("Err")},
			{Name: "unwrap_or", TakesSelf: true, Params: []Param{{Name: "default", Type: T("Ok")}}, Ret: T("Ok")},
		},
	})
}

func registerFile() {
	Register(&StubType{
		Name:       "File",
		Kind:       StubStruct,
		Doc:        "An `@resource` open file handle (stdlib/fs).",
		SourceFile: "stdlib/fs/file.rk",
		Methods: []StubMethod{
			{Name: "read_to_string", TakesSelf: true, Ret: G("Result", T("string"), T("string"))},
			{Name: "write", TakesSelf: true, Params: []Param{{Name: "data", Type: T("string")}}, Ret: G("Result", T("i64"), T("string"))},
			{Name: "close", TakesSelf: true, Ret: T("()"), Doc: "The affine sink: must be called before the binding leaves scope (§4.7)."},
		},
	})
}

func registerNet() {
	Register(&StubType{
		Name:       "TcpListener",
		Kind:       StubStruct,
		Doc:        "An `@resource` bound/listening socket (stdlib/net).",
		SourceFile: "stdlib/net/tcp.rk",
		Methods: []StubMethod{
			{Name: "accept", TakesSelf: true, Ret: G("Result", T("TcpConnection"), T("string")), Doc: "Blocking form; the async form is the same call inside a spawn closure containing a yield point (§4.11 pass 4)."},
			{Name: "local_addr", TakesSelf: true, Ret: T("string")},
			{Name: "close", TakesSelf: true, Ret: T("()")},
		},
	})
	Register(&StubType{
		Name:       "TcpConnection",
		Kind:       StubStruct,
		Doc:        "An `@resource` connected socket (stdlib/net).",
		SourceFile: "stdlib/net/tcp.rk",
		Methods: []StubMethod{
			{Name: "read", TakesSelf: true, Ret: G("Result", T("string"), T("string"))},
			{Name: "write", TakesSelf: true, Params: []Param{{Name: "data", Type: T("string")}}, Ret: G("Result", T("i64"), T("string"))},
			{Name: "close", TakesSelf: true, Ret: T("()")},
		},
	})
}

func registerChannel() {
	Register(&StubType{
		Name:       "Channel",
		Kind:       StubStruct,
		TypeParams: []string{"T"},
		Doc:        "A bounded channel constructor producing a (Sender<T>, Receiver<T>) pair.",
		SourceFile: "stdlib/sync/channel.rk",
		Methods: []StubMethod{
			{Name: "sender", TakesSelf: true, Ret: G("Sender", T("T"))},
			{Name: "receiver", TakesSelf: true, Ret: G("Receiver", T("T"))},
		},
	})
	Register(&StubType{
		Name:       "Sender",
		Kind:       StubStruct,
		TypeParams: []string{"T"},
		Doc:        "The sending half of a Channel<T>.",
		SourceFile: "stdlib/sync/channel.rk",
		Methods: []StubMethod{
			{Name: "send", TakesSelf: true, Params: []Param{{Name: "value", Type: T("T")}}, Ret: G("Result", T("()"), T("string"))},
			{Name: "close", TakesSelf: true, Ret: T("()")},
		},
	})
	Register(&StubType{
		Name:       "Receiver",
		Kind:       StubStruct,
		TypeParams: []string{"T"},
		Doc:        "The receiving half of a Channel<T>.",
		SourceFile: "stdlib/sync/channel.rk",
		Methods: []StubMethod{
			{Name: "recv", TakesSelf: true, Ret: G("Result", T("T"), T("string"))},
			{Name: "close", TakesSelf: true, Ret: T("()")},
		},
	})
}

func registerShared() {
	Register(&StubType{
		Name:       "Shared",
		Kind:       StubStruct,
		TypeParams: []string{"T"},
		Doc:        "RAII-scoped read/write access to shared mutable state (§5 Shared-resource policy); `get`/`set` stand in for the scoped closure forms the interpreter evaluates directly over its own Value representation.",
		SourceFile: "stdlib/sync/shared.rk",
		Methods: []StubMethod{
			{Name: "get", TakesSelf: true, Ret: T("T")},
			{Name: "set", TakesSelf: true, Params: []Param{{Name: "value", Type: T("T")}}, Ret: T("()")},
		},
	})
}

func registerTime() {
	Register(&StubType{
		Name:       "Instant",
		Kind:       StubStruct,
		Doc:        "A monotonic timestamp, as sampled by the benchmark runner (§4.13).",
		SourceFile: "stdlib/time/instant.rk",
		Methods: []StubMethod{
			{Name: "elapsed", TakesSelf: true, Ret: T("Duration")},
		},
	})
	Register(&StubType{
		Name:       "Duration",
		Kind:       StubStruct,
		Doc:        "A span of time.",
		SourceFile: "stdlib/time/duration.rk",
		Methods: []StubMethod{
			{Name: "as_secs", TakesSelf: true, Ret: T("i64")},
			{Name: "as_millis", TakesSelf: true, Ret: T("i64")},
			{Name: "as_nanos", TakesSelf: true, Ret: T("i64")},
		},
	})
}

func registerRng() {
	Register(&StubType{
		Name:       "Rng",
		Kind:       StubStruct,
		Doc:        "A seeded pseudo-random generator (stdlib/random).",
		SourceFile: "stdlib/random/rng.rk",
		Methods: []StubMethod{
			{Name: "next_i64", TakesSelf: true, Ret: T("i64")},
			{Name: "next_f64", TakesSelf: true, Ret: T("f64")},
			{Name: "range", TakesSelf: true, Params: []Param{{Name: "lo", Type: T("i64")}, {Name: "hi", Type: T("i64")}}, Ret: T("i64")},
		},
	})
}
