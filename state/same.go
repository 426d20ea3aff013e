package state

import "reflect"

// Same reports whether a and b are the same value for change detection.
//
// Reference-like values (maps, pointers, channels, funcs) are the same when
// they share an address; slices when they share an address and length;
// comparable values when they are equal.
//
// Other values, such as structs holding slices, have no identity of their own
// and fall back to reflect.DeepEqual. This is content equality: a reducer that
// builds a new struct with the same contents reports "no change". Reducers
// that need every rebuild to count as a change should return a pointer.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if va.Comparable() {
		return va.Equal(vb)
	}
	return reflect.DeepEqual(a, b)
}
