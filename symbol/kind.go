package symbol

// Kind identifies the category of a symbol.
type Kind int

const (
	// Named kinds (declared types; appear in Graph.Symbols)
	KindStruct    Kind = iota // Record with named members (Go struct)
	KindInterface             // Interface; contracts are interfaces with a directive
	KindEnum                  // Defined basic type with declared constants
	KindAlias                 // Defined type over a non-struct type (type IDs []string)

	// Expression kinds (appear nested in members and signatures)
	KindPrimitive // Built-in basic type
	KindAny       // Empty interface
	KindInstance  // Generic instantiation (Origin + Args)
	KindSlice     // []T
	KindArray     // [N]T
	KindMap       // map[K]V
	KindPointer   // *T
	KindChan      // chan T, <-chan T, chan<- T
	KindTypeParam // Generic type parameter
	KindFunc      // Function type; has no serialized shape
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "Struct"
	case KindInterface:
		return "Interface"
	case KindEnum:
		return "Enum"
	case KindAlias:
		return "Alias"
	case KindPrimitive:
		return "Primitive"
	case KindAny:
		return "Any"
	case KindInstance:
		return "Instance"
	case KindSlice:
		return "Slice"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindPointer:
		return "Pointer"
	case KindChan:
		return "Chan"
	case KindTypeParam:
		return "TypeParam"
	case KindFunc:
		return "Func"
	default:
		return "Unknown"
	}
}

// IsNamed reports whether symbols of this kind are declarations.
func (k Kind) IsNamed() bool {
	return k <= KindAlias
}

// ChanDir is the direction of a channel symbol.
type ChanDir int

const (
	ChanBoth ChanDir = iota
	ChanSend
	ChanRecv
)

// ContractKind marks interfaces that are RPC contracts.
type ContractKind int

const (
	ContractNone     ContractKind = iota
	ContractHub                   // Methods invoked remotely by a caller
	ContractReceiver              // Callback methods invoked by the service on a caller
)

// String returns the contract kind name.
func (c ContractKind) String() string {
	switch c {
	case ContractHub:
		return "hub"
	case ContractReceiver:
		return "receiver"
	default:
		return "none"
	}
}

// MarshalKind records custom serialization implemented by a named type.
type MarshalKind int

const (
	MarshalNone MarshalKind = iota
	MarshalText             // encoding.TextMarshaler: serializes as a string
	MarshalJSON             // json.Marshaler: shape unknown
)
