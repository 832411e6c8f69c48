package value

import "testing"

func TestMySQLBitSingleBitToBool(t *testing.T) {
	v, err := MySQLBit(1, []byte{1}, Rules{BitOneToBoolean: true})
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != KindBool || !v.Bool {
		t.Fatalf("expected true bool, got %+v", v)
	}
}

func TestMySQLBitWideRejectedAsBoolean(t *testing.T) {
	_, err := MySQLBit(9, []byte{1, 0}, Rules{BitOneToBoolean: true})
	if err == nil {
		t.Fatal("expected error for bit(9) under bit->boolean rule")
	}
}

func TestMySQLBitWideKeepsBytes(t *testing.T) {
	v, err := MySQLBit(9, []byte{1, 0}, Rules{})
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != KindBit || v.BitWidth != 9 {
		t.Fatalf("expected Bit(9), got %+v", v)
	}
}

func TestMySQLTinyIntRule(t *testing.T) {
	v := MySQLTinyInt(1, true, Rules{Tinyint1ToBool: true})
	if v.Kind != KindBool {
		t.Fatalf("expected bool, got %+v", v)
	}
	v2 := MySQLTinyInt(1, true, Rules{Tinyint1ToBool: false})
	if v2.Kind != KindInt64 {
		t.Fatalf("expected int64, got %+v", v2)
	}
}

func TestZeroDateToNull(t *testing.T) {
	v, matched, err := ZeroDate("0000-00-00", Rules{ZeroDateToNull: true})
	if err != nil || !matched || !v.IsNull() {
		t.Fatalf("expected null, got %+v matched=%v err=%v", v, matched, err)
	}
}

func TestZeroDateRejected(t *testing.T) {
	_, matched, err := ZeroDate("0000-00-00 00:00:00", Rules{ZeroDateToNull: false})
	if !matched || err == nil {
		t.Fatalf("expected IncompatibleValue error, got matched=%v err=%v", matched, err)
	}
}

func TestZeroDateIgnoresOrdinaryDates(t *testing.T) {
	_, matched, err := ZeroDate("2024-01-01", Rules{ZeroDateToNull: true})
	if matched || err != nil {
		t.Fatalf("ordinary date should not match zero-date sentinel")
	}
}

func TestMySQLSetDecode(t *testing.T) {
	v := MySQLSet("rot,grün")
	if v.Kind != KindSetLabels || len(v.SetLabels) != 2 {
		t.Fatalf("expected two labels, got %+v", v)
	}
}

func TestSetLabelsForTargetCSV(t *testing.T) {
	v := MySQLSet("a,b")
	out := SetLabelsForTarget(v, Rules{SetAsCSVText: true})
	if out.Kind != KindString || out.Str != "a,b" {
		t.Fatalf("expected csv text, got %+v", out)
	}
}

func TestSetLabelsForTargetArray(t *testing.T) {
	v := MySQLSet("a,b")
	out := SetLabelsForTarget(v, Rules{})
	if out.Kind != KindArray || len(out.Array) != 2 {
		t.Fatalf("expected text[] array, got %+v", out)
	}
}

func TestUnsignedWiden(t *testing.T) {
	cases := map[int]Kind{8: KindInt64, 16: KindInt64, 32: KindInt64, 64: KindDecimal}
	for bits, want := range cases {
		got := UnsignedWiden(bits).Kind
		if got != want {
			t.Errorf("UnsignedWiden(%d) = %v, want %v", bits, got, want)
		}
	}
}

func TestTruncateFractionalSecondsTruncatesTowardZero(t *testing.T) {
	dt := DateTimeValue{Nanos: 999999999, Precision: 6}
	out := TruncateFractionalSeconds(dt, 3)
	if out.Nanos != 999000000 || out.Precision != 3 {
		t.Fatalf("expected truncation toward zero, got %+v", out)
	}
}

func TestCanonicalJSONKeyOrderIgnored(t *testing.T) {
	a, err := CanonicalJSON(`{"id":1,"key":"value"}`)
	if err != nil {
		t.Fatal(err)
	}
	b, err := CanonicalJSON(`{"key":"value","id":1}`)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected canonical forms to match: %q vs %q", a, b)
	}
}

func TestCanonicalJSONRejectsInvalid(t *testing.T) {
	if _, err := CanonicalJSON(`{not json`); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
