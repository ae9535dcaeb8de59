package envutil

import "testing"

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("GYM_TEST_INT", "abc")
	if got := Int("GYM_TEST_INT", 7); got != 7 {
		t.Fatalf("want=7 got=%d", got)
	}
	t.Setenv("GYM_TEST_INT", " 12 ")
	if got := Int("GYM_TEST_INT", 7); got != 12 {
		t.Fatalf("want=12 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"yes": true, "off": false, "": true, "maybe": true}
	for raw, want := range cases {
		t.Setenv("GYM_TEST_BOOL", raw)
		if got := Bool("GYM_TEST_BOOL", true); got != want {
			t.Fatalf("%q: want=%v got=%v", raw, want, got)
		}
	}
}

func TestGetEnvDefaultsOnBlank(t *testing.T) {
	t.Setenv("GYM_TEST_STR", "   ")
	if got := GetEnv("GYM_TEST_STR", "fallback", nil); got != "fallback" {
		t.Fatalf("want=fallback got=%q", got)
	}
}
