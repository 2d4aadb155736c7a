package codegen

// DispatchEntry is one row of §4.12's stdlib dispatch table: a MIR
// callee name resolves to a fixed runtime C symbol with a known
// parameter/return shape, so the backend never needs to special-case
// stdlib calls by hand.
type DispatchEntry struct {
	MIRName    string
	CRuntime   string
	ParamTypes []string
	RetType    string // "" for a unit/void return
}

// dispatchKey disambiguates method names that collide across stdlib
// types (Vec.insert vs Map.insert vs Pool.insert all reach the MIR as
// "method.insert"; only the receiver's concrete, monomorphized type
// name tells them apart). An empty Receiver matches any receiver,
// used for the handful of names (iterator.*, array.*, runtime.*,
// tuple.literal, unwrap, null_coalesce, string_append) that
// never collide.
type dispatchKey struct {
	Receiver string
	Method   string
}

// builtinDispatch is the curated table §4.12 describes: every entry
// below is a deliberate, hand-picked mapping, not a generated one —
// growing it means adding a row, not changing the lookup logic.
var builtinDispatch = map[dispatchKey]DispatchEntry{
	{"Vec", "push"}:     {"method.push", "rask_vec_push", []string{"i64", "i64"}, ""},
	{"Vec", "pop"}:      {"method.pop", "rask_vec_pop", []string{"i64"}, "i64"},
	{"Vec", "get"}:      {"method.get", "rask_vec_get", []string{"i64", "i64"}, "i64"},
	{"Vec", "set"}:      {"method.set", "rask_vec_set", []string{"i64", "i64", "i64"}, ""},
	{"Vec", "insert"}:   {"method.insert", "rask_vec_insert", []string{"i64", "i64", "i64"}, ""},
	{"Vec", "remove"}:   {"method.remove", "rask_vec_remove", []string{"i64", "i64"}, "i64"},
	{"Vec", "len"}:      {"method.len", "rask_vec_len", []string{"i64"}, "i64"},
	{"Vec", "is_empty"}: {"method.is_empty", "rask_vec_is_empty", []string{"i64"}, "i64"},
	{"Vec", "clear"}:    {"method.clear", "rask_vec_clear", []string{"i64"}, ""},
	{"Vec", "contains"}: {"method.contains", "rask_vec_contains", []string{"i64", "i64"}, "i64"},
	{"Vec", "iter"}:     {"method.iter", "rask_vec_iter", []string{"i64"}, "i64"},

	{"Map", "insert"}:       {"method.insert", "rask_map_insert", []string{"i64", "i64", "i64"}, "i64"},
	{"Map", "get"}:          {"method.get", "rask_map_get", []string{"i64", "i64"}, "i64"},
	{"Map", "remove"}:       {"method.remove", "rask_map_remove", []string{"i64", "i64"}, "i64"},
	{"Map", "contains_key"}: {"method.contains_key", "rask_map_contains_key", []string{"i64", "i64"}, "i64"},
	{"Map", "len"}:          {"method.len", "rask_map_len", []string{"i64"}, "i64"},
	{"Map", "is_empty"}:     {"method.is_empty", "rask_map_is_empty", []string{"i64"}, "i64"},
	{"Map", "clear"}:        {"method.clear", "rask_map_clear", []string{"i64"}, ""},
	{"Map", "keys"}:         {"method.keys", "rask_map_keys", []string{"i64"}, "i64"},
	{"Map", "values"}:       {"method.values", "rask_map_values", []string{"i64"}, "i64"},

	{"Pool", "insert"}:   {"method.insert", "rask_pool_alloc_packed", []string{"i64", "i64"}, "i64"},
	{"Pool", "get"}:      {"method.get", "rask_pool_get", []string{"i64", "i64"}, "i64"},
	{"Pool", "remove"}:   {"method.remove", "rask_pool_remove", []string{"i64", "i64"}, "i64"},
	{"Pool", "contains"}: {"method.contains", "rask_pool_contains", []string{"i64", "i64"}, "i64"},
	{"Pool", "len"}:      {"method.len", "rask_pool_len", []string{"i64"}, "i64"},
	{"Pool", "clear"}:    {"method.clear", "rask_pool_clear", []string{"i64"}, ""},

	{"string", "len"}:       {"method.len", "rask_string_len", []string{"i64"}, "i64"},
	{"string", "is_empty"}:  {"method.is_empty", "rask_string_is_empty", []string{"i64"}, "i64"},
	{"string", "push_str"}:  {"method.push_str", "rask_string_push_str", []string{"i64", "i64"}, ""},
	{"string", "concat"}:    {"method.concat", "rask_string_concat", []string{"i64", "i64"}, "i64"},
	{"string", "eq"}:        {"method.eq", "rask_string_eq", []string{"i64", "i64"}, "i64"},
	{"string", "contains"}:  {"method.contains", "rask_string_contains", []string{"i64", "i64"}, "i64"},
	{"string", "split"}:     {"method.split", "rask_string_split", []string{"i64", "i64"}, "i64"},
	{"string", "trim"}:      {"method.trim", "rask_string_trim", []string{"i64"}, "i64"},
	{"string", "to_upper"}:  {"method.to_upper", "rask_string_to_upper", []string{"i64"}, "i64"},
	{"string", "to_lower"}:  {"method.to_lower", "rask_string_to_lower", []string{"i64"}, "i64"},

	{"Option", "is_some"}:   {"method.is_some", "rask_option_is_some", []string{"i64"}, "i64"},
	{"Option", "is_none"}:   {"method.is_none", "rask_option_is_none", []string{"i64"}, "i64"},
	{"Option", "unwrap"}:    {"method.unwrap", "rask_option_unwrap", []string{"i64"}, "i64"},
	{"Option", "unwrap_or"}: {"method.unwrap_or", "rask_option_unwrap_or", []string{"i64", "i64"}, "i64"},
	{"Option", "expect"}:    {"method.expect", "rask_option_expect", []string{"i64", "i64"}, "i64"},

	{"Result", "is_ok"}:     {"method.is_ok", "rask_result_is_ok", []string{"i64"}, "i64"},
	{"Result", "is_err"}:    {"method.is_err", "rask_result_is_err", []string{"i64"}, "i64"},
	{"Result", "unwrap"}:    {"method.unwrap", "rask_result_unwrap", []string{"i64"}, "i64"},
	{"Result", "unwrap_err"}: {"method.unwrap_err", "rask_result_unwrap_err", []string{"i64"}, "i64"},
	{"Result", "unwrap_or"}: {"method.unwrap_or", "rask_result_unwrap_or", []string{"i64", "i64"}, "i64"},

	{"File", "read_to_string"}: {"method.read_to_string", "rask_file_read_to_string", []string{"i64"}, "i64"},
	{"File", "write"}:          {"method.write", "rask_file_write", []string{"i64", "i64"}, "i64"},
	{"File", "close"}:          {"method.close", "rask_file_close", []string{"i64"}, ""},

	{"TcpListener", "accept"}:     {"method.accept", "rask_yield_accept", []string{"i64"}, "i64"},
	{"TcpListener", "local_addr"}: {"method.local_addr", "rask_tcp_listener_local_addr", []string{"i64"}, "i64"},
	{"TcpListener", "close"}:      {"method.close", "rask_tcp_listener_close", []string{"i64"}, ""},

	{"TcpConnection", "read"}:  {"method.read", "rask_yield_read", []string{"i64"}, "i64"},
	{"TcpConnection", "write"}: {"method.write", "rask_yield_write", []string{"i64", "i64"}, "i64"},
	{"TcpConnection", "close"}: {"method.close", "rask_tcp_connection_close", []string{"i64"}, ""},

	{"Channel", "sender"}:   {"method.sender", "rask_channel_sender", []string{"i64"}, "i64"},
	{"Channel", "receiver"}: {"method.receiver", "rask_channel_receiver", []string{"i64"}, "i64"},
	{"Sender", "send"}:      {"method.send", "rask_yield_send", []string{"i64", "i64"}, "i64"},
	{"Sender", "close"}:     {"method.close", "rask_sender_close", []string{"i64"}, ""},
	{"Receiver", "recv"}:    {"method.recv", "rask_yield_recv", []string{"i64"}, "i64"},
	{"Receiver", "close"}:   {"method.close", "rask_receiver_close", []string{"i64"}, ""},

	{"Shared", "get"}: {"method.get", "rask_shared_get", []string{"i64"}, "i64"},
	{"Shared", "set"}: {"method.set", "rask_shared_set", []string{"i64", "i64"}, ""},

	{"Instant", "elapsed"}:    {"method.elapsed", "rask_instant_elapsed", []string{"i64"}, "i64"},
	{"Duration", "as_secs"}:   {"method.as_secs", "rask_duration_as_secs", []string{"i64"}, "i64"},
	{"Duration", "as_millis"}: {"method.as_millis", "rask_duration_as_millis", []string{"i64"}, "i64"},
	{"Duration", "as_nanos"}:  {"method.as_nanos", "rask_duration_as_nanos", []string{"i64"}, "i64"},

	{"Rng", "next_i64"}: {"method.next_i64", "rask_rng_next_i64", []string{"i64"}, "i64"},
	{"Rng", "next_f64"}: {"method.next_f64", "rask_rng_next_f64", []string{"i64"}, "f64"},
	{"Rng", "range"}:    {"method.range", "rask_rng_range", []string{"i64", "i64", "i64"}, "i64"},

	// Names with no receiver ambiguity: keyed on an empty Receiver.
	{"", "iterator.has_next"}:     {"iterator.has_next", "rask_iter_has_next", []string{"i64"}, "i64"},
	{"", "iterator.next"}:         {"iterator.next", "rask_iter_next", []string{"i64"}, "i64"},
	{"", "array.literal"}:         {"array.literal", "rask_array_literal", nil, "i64"},
	{"", "array.repeat"}:          {"array.repeat", "rask_array_repeat", []string{"i64", "i64"}, "i64"},
	{"", "tuple.literal"}:         {"tuple.literal", "rask_tuple_literal", nil, "i64"},
	{"", "unwrap"}:                {"unwrap", "rask_unwrap", []string{"i64"}, "i64"},
	{"", "null_coalesce"}:         {"null_coalesce", "rask_null_coalesce", []string{"i64", "i64"}, "i64"},
	{"", "string_append"}:         {"string_append", "rask_string_append", []string{"i64", "i64"}, ""},
	{"", "runtime.spawn"}:         {"runtime.spawn", "rask_runtime_spawn", []string{"i64"}, "i64"},
	{"", "runtime.assert"}:        {"runtime.assert", "rask_runtime_assert", []string{"i64", "i64"}, ""},
	{"", "runtime.check"}:         {"runtime.check", "rask_runtime_check", []string{"i64", "i64"}, ""},
	{"", "runtime.select_poll"}:   {"runtime.select_poll", "rask_runtime_select_poll", nil, "i64"},
}

// lookupDispatch resolves a MIR callee name to its runtime entry,
// first trying the receiver-qualified key (when recvType is known and
// the callee looks like a "method.X" name) and falling back to the
// receiver-less key every other callee shape uses.
func lookupDispatch(callee, recvType string) (DispatchEntry, bool) {
	if recvType != "" {
		if e, ok := builtinDispatch[dispatchKey{recvType, methodName(callee)}]; ok {
			return e, true
		}
	}
	e, ok := builtinDispatch[dispatchKey{"", callee}]
	return e, ok
}

func methodName(callee string) string {
	const prefix = "method."
	if len(callee) > len(prefix) && callee[:len(prefix)] == prefix {
		return callee[len(prefix):]
	}
	return callee
}
