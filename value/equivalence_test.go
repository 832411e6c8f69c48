package value

import "testing"

func TestEquivalentNull(t *testing.T) {
	if !Equivalent(Null(), Null()) {
		t.Fatal("null should equal null")
	}
	if Equivalent(Null(), Int64(0)) {
		t.Fatal("null should not equal zero")
	}
}

func TestEquivalentNumericPromotion(t *testing.T) {
	d, err := Decimal("65535", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !Equivalent(d, Int64(65535)) {
		t.Fatal("decimal and int64 of equal value should be equivalent")
	}
	if !Equivalent(UInt64(65535), Int64(65535)) {
		t.Fatal("uint64 and int64 of equal value should be equivalent")
	}
}

func TestEquivalentDecimalIgnoresTextualForm(t *testing.T) {
	a, _ := Decimal("1.50", 2)
	b, _ := Decimal("1.5", 1)
	if !Equivalent(a, b) {
		t.Fatal("decimals should compare by numeric value, not textual form")
	}
}

func TestEquivalentJSONKeyOrderIgnored(t *testing.T) {
	a := JSON(`{"id":1,"key":"value"}`)
	b := JSON(`{"key":"value","id":1}`)
	if !Equivalent(a, b) {
		t.Fatal("json should compare structurally")
	}
}

func TestEquivalentBytesExact(t *testing.T) {
	if !Equivalent(Bytes([]byte{1, 2, 3}), Bytes([]byte{1, 2, 3})) {
		t.Fatal("identical bytes should be equivalent")
	}
	if Equivalent(Bytes([]byte{1, 2, 3}), Bytes([]byte{1, 2, 4})) {
		t.Fatal("differing bytes should not be equivalent")
	}
}

func TestEquivalentSetLabelsAsSet(t *testing.T) {
	a := SetLabels([]string{"rot", "grün"})
	b := SetLabels([]string{"grün", "rot"})
	if !Equivalent(a, b) {
		t.Fatal("set labels should compare as sets, order-independent")
	}
}

func TestEquivalentArrayElementwiseOrdered(t *testing.T) {
	a := Array(KindInt64, []Value{Int64(1), Int64(2)})
	b := Array(KindInt64, []Value{Int64(2), Int64(1)})
	if Equivalent(a, b) {
		t.Fatal("arrays must compare element-wise in order, not as sets")
	}
	c := Array(KindInt64, []Value{Int64(1), Int64(2)})
	if !Equivalent(a, c) {
		t.Fatal("identical ordered arrays should be equivalent")
	}
}

func TestEquivalentTemporalCoarserPrecision(t *testing.T) {
	a := DateTimeValue{Year: 2024, Month: 1, Day: 1, Nanos: 123456000, Precision: 6}
	b := DateTimeValue{Year: 2024, Month: 1, Day: 1, Nanos: 123000000, Precision: 3}
	va := Value{Kind: KindDateTime, DateTime: a}
	vb := Value{Kind: KindDateTime, DateTime: b}
	if !Equivalent(va, vb) {
		t.Fatal("datetimes should compare equal after truncating to coarser precision")
	}
}

func TestEquivalentUUID(t *testing.T) {
	v1, err := UUIDFromBytes(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	v2, err := UUIDFromBytes(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	if !Equivalent(v1, v2) {
		t.Fatal("equal uuid bytes should be equivalent")
	}
}

func TestEquivalentInetCanonicalizes(t *testing.T) {
	if !Equivalent(Inet("10.0.0.1/32"), Inet("10.0.0.1")) {
		t.Fatal("inet host route should canonicalize for comparison")
	}
}
