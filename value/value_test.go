package value

import "testing"

func TestValueStringDateTimeDateTime(t *testing.T) {
	date := Value{Kind: KindDate, Date: DateValue{Year: 2024, Month: 1, Day: 2}}
	if got, want := date.String(), "2024-01-02"; got != want {
		t.Fatalf("Date.String() = %q, want %q", got, want)
	}

	tm := Value{Kind: KindTime, Time: TimeValue{Hour: 3, Minute: 4, Second: 5}}
	if got, want := tm.String(), "03:04:05"; got != want {
		t.Fatalf("Time.String() = %q, want %q", got, want)
	}

	tmFrac := Value{Kind: KindTime, Time: TimeValue{Hour: 3, Minute: 4, Second: 5, Nanos: 123000000}}
	if got, want := tmFrac.String(), "03:04:05.123"; got != want {
		t.Fatalf("Time.String() with fraction = %q, want %q", got, want)
	}

	dt := Value{Kind: KindDateTime, DateTime: DateTimeValue{
		Year: 2024, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 5, Nanos: 500000000,
	}}
	if got, want := dt.String(), "2024-01-02 03:04:05.5"; got != want {
		t.Fatalf("DateTime.String() = %q, want %q", got, want)
	}

	dtNoFrac := Value{Kind: KindDateTime, DateTime: DateTimeValue{Year: 2024, Month: 1, Day: 2}}
	if got, want := dtNoFrac.String(), "2024-01-02 00:00:00"; got != want {
		t.Fatalf("DateTime.String() without fraction = %q, want %q", got, want)
	}
}

func TestValueStringArrayRendersElementsNotStructDump(t *testing.T) {
	arr := Array(KindDate, []Value{
		{Kind: KindDate, Date: DateValue{Year: 2024, Month: 1, Day: 1}},
		{Kind: KindDate, Date: DateValue{Year: 2024, Month: 12, Day: 31}},
	})
	got := arr.String()
	want := "{2024-01-01,2024-12-31}"
	if got != want {
		t.Fatalf("Array.String() = %q, want %q (should render each element's canonical text, not a Go struct dump)", got, want)
	}
}
