package icall

// catalogue is the closed set of built-in ICall mappings. Entries are
// grouped by the category they cover; within a category, typed-overload
// entries precede the exact-arity entries they disambiguate.
var catalogue = []Entry{
	// Runtime type-system primitives: object identity, hash, equality,
	// string internal layout.
	{Type: "System.Object", Method: "GetHashCode", ParamCount: 0, RuntimeFunc: "rt_object_get_hashcode"},
	{Type: "System.Object", Method: "Equals", ParamCount: 1, RuntimeFunc: "rt_object_equals"},
	{Type: "System.Object", Method: "ReferenceEquals", ParamCount: 2, RuntimeFunc: "rt_object_reference_equals"},
	{Type: "System.Object", Method: "GetType", ParamCount: 0, RuntimeFunc: "rt_object_get_type"},
	{Type: "System.String", Method: "get_Length", ParamCount: 0, RuntimeFunc: "rt_string_length"},
	{Type: "System.String", Method: "get_Chars", ParamCount: 1, RuntimeFunc: "rt_string_char_at"},
	{Type: "System.String", Method: "Concat", ParamCount: -1, RuntimeFunc: "rt_string_concat"},
	{Type: "System.String", Method: "InternalAllocateStr", ParamCount: 1, RuntimeFunc: "rt_string_alloc"},
	{Type: "System.ValueType", Method: "Equals", ParamCount: 1, RuntimeFunc: "rt_valuetype_equals"},
	{Type: "System.ValueType", Method: "GetHashCode", ParamCount: 0, RuntimeFunc: "rt_valuetype_get_hashcode"},

	// Array operations.
	{Type: "System.Array", Method: "get_Length", ParamCount: 0, RuntimeFunc: "rt_array_length"},
	{Type: "System.Array", Method: "GetLength", ParamCount: 1, RuntimeFunc: "rt_array_get_length_dim"},
	{Type: "System.Array", Method: "Copy", ParamCount: 3, RuntimeFunc: "rt_array_copy"},
	{Type: "System.Array", Method: "Copy", ParamCount: 5, RuntimeFunc: "rt_array_copy_range"},
	{Type: "System.Array", Method: "Clear", ParamCount: 3, RuntimeFunc: "rt_array_clear"},
	{Type: "System.Array", Method: "CreateInstance", ParamCount: -1, RuntimeFunc: "rt_array_create_instance"},

	// Delegates.
	{Type: "System.Delegate", Method: "CreateDelegate", ParamCount: -1, RuntimeFunc: "rt_delegate_create"},
	{Type: "System.Delegate", Method: "Combine", ParamCount: 2, RuntimeFunc: "rt_delegate_combine"},
	{Type: "System.Delegate", Method: "Remove", ParamCount: 2, RuntimeFunc: "rt_delegate_remove"},
	{Type: "System.MulticastDelegate", Method: "GetInvocationList", ParamCount: 0, RuntimeFunc: "rt_delegate_invocation_list"},

	// Enum boxing and underlying-type queries.
	{Type: "System.Enum", Method: "GetUnderlyingType", ParamCount: 1, RuntimeFunc: "rt_enum_underlying_type"},
	{Type: "System.Enum", Method: "ToObject", ParamCount: 2, RuntimeFunc: "rt_enum_to_object"},
	{Type: "System.Enum", Method: "InternalBoxEnum", ParamCount: 2, RuntimeFunc: "rt_enum_box"},

	// Integer/pointer construction and round-trips.
	{Type: "System.IntPtr", Method: "op_Explicit", ParamCount: 1, FirstParamType: "int32_t", RuntimeFunc: "rt_intptr_from_i32"},
	{Type: "System.IntPtr", Method: "op_Explicit", ParamCount: 1, FirstParamType: "int64_t", RuntimeFunc: "rt_intptr_from_i64"},
	{Type: "System.IntPtr", Method: "ToInt32", ParamCount: 0, RuntimeFunc: "rt_intptr_to_i32"},
	{Type: "System.IntPtr", Method: "ToInt64", ParamCount: 0, RuntimeFunc: "rt_intptr_to_i64"},
	{Type: "System.UIntPtr", Method: "ToUInt32", ParamCount: 0, RuntimeFunc: "rt_uintptr_to_u32"},
	{Type: "System.UIntPtr", Method: "ToUInt64", ParamCount: 0, RuntimeFunc: "rt_uintptr_to_u64"},

	// Unicode/globalization primitives.
	{Type: "System.Char", Method: "IsDigit", ParamCount: 1, RuntimeFunc: "rt_char_is_digit"},
	{Type: "System.Char", Method: "IsWhiteSpace", ParamCount: 1, RuntimeFunc: "rt_char_is_whitespace"},
	{Type: "System.Char", Method: "IsLetter", ParamCount: 1, RuntimeFunc: "rt_char_is_letter"},
	{Type: "System.Char", Method: "ToUpperInvariant", ParamCount: 1, RuntimeFunc: "rt_char_to_upper_invariant"},
	{Type: "System.Char", Method: "ToLowerInvariant", ParamCount: 1, RuntimeFunc: "rt_char_to_lower_invariant"},
	{Type: "System.Globalization.CultureInfo", Method: "get_InvariantCulture", ParamCount: 0, RuntimeFunc: "rt_culture_invariant"},
	{Type: "System.String", Method: "CompareOrdinal", ParamCount: 2, RuntimeFunc: "rt_string_compare_ordinal"},
	{Type: "System.String", Method: "IndexOf", ParamCount: -1, RuntimeFunc: "rt_string_index_of"},

	// Math (double and float variants).
	{Type: "System.Math", Method: "Sqrt", ParamCount: 1, RuntimeFunc: "rt_math_sqrt"},
	{Type: "System.Math", Method: "Sin", ParamCount: 1, RuntimeFunc: "rt_math_sin"},
	{Type: "System.Math", Method: "Cos", ParamCount: 1, RuntimeFunc: "rt_math_cos"},
	{Type: "System.Math", Method: "Floor", ParamCount: 1, RuntimeFunc: "rt_math_floor"},
	{Type: "System.Math", Method: "Ceiling", ParamCount: 1, RuntimeFunc: "rt_math_ceiling"},
	{Type: "System.Math", Method: "Pow", ParamCount: 2, RuntimeFunc: "rt_math_pow"},
	{Type: "System.MathF", Method: "Sqrt", ParamCount: 1, RuntimeFunc: "rt_mathf_sqrt"},
	{Type: "System.MathF", Method: "Sin", ParamCount: 1, RuntimeFunc: "rt_mathf_sin"},
	{Type: "System.MathF", Method: "Cos", ParamCount: 1, RuntimeFunc: "rt_mathf_cos"},

	// Threading primitives: monitor, interlocked, volatile wildcards,
	// thread control.
	{Type: "System.Threading.Monitor", Method: "Enter", ParamCount: -1, RuntimeFunc: "rt_monitor_enter"},
	{Type: "System.Threading.Monitor", Method: "Exit", ParamCount: 1, RuntimeFunc: "rt_monitor_exit"},
	{Type: "System.Threading.Monitor", Method: "TryEnter", ParamCount: -1, RuntimeFunc: "rt_monitor_try_enter"},
	{Type: "System.Threading.Interlocked", Method: "Increment", ParamCount: 1, FirstParamType: "int32_t&", RuntimeFunc: "rt_interlocked_increment_i32"},
	{Type: "System.Threading.Interlocked", Method: "Increment", ParamCount: 1, FirstParamType: "int64_t&", RuntimeFunc: "rt_interlocked_increment_i64"},
	{Type: "System.Threading.Interlocked", Method: "Exchange", ParamCount: 2, FirstParamType: "int32_t&", RuntimeFunc: "rt_interlocked_exchange_i32"},
	{Type: "System.Threading.Interlocked", Method: "Exchange", ParamCount: 2, FirstParamType: "int64_t&", RuntimeFunc: "rt_interlocked_exchange_i64"},
	{Type: "System.Threading.Interlocked", Method: "Exchange", ParamCount: 2, FirstParamType: "Object&", RuntimeFunc: "rt_interlocked_exchange_obj"},
	{Type: "System.Threading.Interlocked", Method: "CompareExchange", ParamCount: 3, FirstParamType: "int32_t&", RuntimeFunc: "rt_interlocked_cas_i32"},
	{Type: "System.Threading.Interlocked", Method: "CompareExchange", ParamCount: 3, FirstParamType: "int64_t&", RuntimeFunc: "rt_interlocked_cas_i64"},
	{Type: "System.Threading.Interlocked", Method: "CompareExchange", ParamCount: 3, FirstParamType: "Object&", RuntimeFunc: "rt_interlocked_cas_obj"},
	{Type: "System.Threading.Volatile", Method: "Read", ParamCount: 1, RuntimeFunc: "rt_volatile_read"},
	{Type: "System.Threading.Volatile", Method: "Write", ParamCount: 2, RuntimeFunc: "rt_volatile_write"},
	{Type: "System.Threading.Thread", Method: "Sleep", ParamCount: 1, RuntimeFunc: "rt_thread_sleep"},
	{Type: "System.Threading.Thread", Method: "get_CurrentThread", ParamCount: 0, RuntimeFunc: "rt_thread_current"},

	// Memory operations: buffer move/zero, write barrier, GC handle,
	// marshaling allocator.
	{Type: "System.Buffer", Method: "BlockCopy", ParamCount: 5, RuntimeFunc: "rt_buffer_block_copy"},
	{Type: "System.Buffer", Method: "MemoryCopy", ParamCount: -1, RuntimeFunc: "rt_buffer_memmove"},
	{Type: "System.Buffer", Method: "ZeroMemory", ParamCount: 2, RuntimeFunc: "rt_buffer_zero"},
	{Type: "System.GC", Method: "Collect", ParamCount: -1, RuntimeFunc: "rt_gc_collect"},
	{Type: "System.GC", Method: "KeepAlive", ParamCount: 1, RuntimeFunc: "rt_gc_keep_alive"},
	{Type: "System.Runtime.InteropServices.GCHandle", Method: "Alloc", ParamCount: -1, RuntimeFunc: "rt_gchandle_alloc"},
	{Type: "System.Runtime.InteropServices.GCHandle", Method: "Free", ParamCount: 0, RuntimeFunc: "rt_gchandle_free"},
	{Type: "System.Runtime.InteropServices.Marshal", Method: "AllocHGlobal", ParamCount: 1, RuntimeFunc: "rt_marshal_alloc_hglobal"},
	{Type: "System.Runtime.InteropServices.Marshal", Method: "FreeHGlobal", ParamCount: 1, RuntimeFunc: "rt_marshal_free_hglobal"},
	{Type: "System.Runtime.InteropServices.Marshal", Method: "Copy", ParamCount: -1, RuntimeFunc: "rt_marshal_copy"},

	// File and path operations.
	{Type: "System.IO.File", Method: "Exists", ParamCount: 1, RuntimeFunc: "rt_file_exists"},
	{Type: "System.IO.File", Method: "ReadAllBytes", ParamCount: 1, RuntimeFunc: "rt_file_read_all_bytes"},
	{Type: "System.IO.File", Method: "ReadAllText", ParamCount: -1, RuntimeFunc: "rt_file_read_all_text"},
	{Type: "System.IO.File", Method: "WriteAllBytes", ParamCount: 2, RuntimeFunc: "rt_file_write_all_bytes"},
	{Type: "System.IO.Path", Method: "Combine", ParamCount: -1, RuntimeFunc: "rt_path_combine"},
	{Type: "System.IO.Path", Method: "GetFileName", ParamCount: 1, RuntimeFunc: "rt_path_get_filename"},
	{Type: "System.IO.Path", Method: "GetExtension", ParamCount: 1, RuntimeFunc: "rt_path_get_extension"},

	// Type-handle introspection.
	{Type: "System.Type", Method: "GetTypeFromHandle", ParamCount: 1, RuntimeFunc: "rt_type_from_handle"},
	{Type: "System.Type", Method: "get_FullName", ParamCount: 0, RuntimeFunc: "rt_type_full_name"},
	{Type: "System.RuntimeTypeHandle", Method: "get_Value", ParamCount: 0, RuntimeFunc: "rt_typehandle_value"},

	// ETW-like diagnostics: no-ops in this runtime.
	{Type: "System.Diagnostics.Tracing.EventSource", Method: "WriteEvent", ParamCount: -1, RuntimeFunc: "rt_noop"},
	{Type: "System.Diagnostics.Debugger", Method: "Break", ParamCount: 0, RuntimeFunc: "rt_noop"},
	{Type: "System.Diagnostics.Debugger", Method: "Log", ParamCount: -1, RuntimeFunc: "rt_noop"},

	// Host-specific platform P/Invoke stubs: Win32 registry, NT/kernel,
	// BCrypt, globalization. These never have an IL body of their own; the
	// registry intercepts the call rather than following a PInvokeInfo.
	{Type: "Microsoft.Win32.RegistryKey", Method: "OpenSubKey", ParamCount: -1, RuntimeFunc: "rt_win32_registry_open_subkey"},
	{Type: "Microsoft.Win32.RegistryKey", Method: "GetValue", ParamCount: -1, RuntimeFunc: "rt_win32_registry_get_value"},
	{Type: "Interop.Kernel32", Method: "GetLastError", ParamCount: 0, RuntimeFunc: "rt_kernel32_get_last_error"},
	{Type: "Interop.BCrypt", Method: "BCryptGenRandom", ParamCount: -1, RuntimeFunc: "rt_bcrypt_gen_random"},
	{Type: "Interop.Globalization", Method: "GetSortVersion", ParamCount: -1, RuntimeFunc: "rt_globalization_sort_version"},
}
