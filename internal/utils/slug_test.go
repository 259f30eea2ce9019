package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Oppenheimer", "oppenheimer"},
		{"The Dark Knight", "the-dark-knight"},
		{"12 Years a Slave", "12-years-a-slave"},
		{"Charlie and the Chocolate Factory", "charlie-and-the-chocolate-factory"},
		{"  Padded   Title  ", "padded-title"},
		{"Spider-Man: No Way Home", "spider-man-no-way-home"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
