package ast

// MemberSymbol is the emitted function name of a member: OwningType_MemberName.
// Functions of the unnamed module keep their bare name.
func MemberSymbol(owner, member string) string {
	if owner == "" {
		return member
	}
	return owner + "_" + member
}

// SpecializationSymbol names a generic member specialized for a concrete
// type: OwningClass_MemberName_ConcreteTypeName.
func SpecializationSymbol(owner, member, concrete string) string {
	return MemberSymbol(owner, member) + "_" + concrete
}

// StructSymbol is the emitted struct name of a class, prefixed by its
// module when there is one.
func StructSymbol(module, class string) string {
	if module == "" {
		return class
	}
	return module + "_" + class
}

// DispatchUnionName names the tagged union carrying any implementer of an
// interface.
func DispatchUnionName(iface string) string {
	return iface + "_Dispatch"
}

// DispatchTagName names the union tag of one implementer.
func DispatchTagName(iface, class string) string {
	return iface + "_Tag_" + class
}
