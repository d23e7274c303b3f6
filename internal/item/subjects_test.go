package item

import (
	"reflect"
	"testing"
)

// TestSubjects_MapsExtensionsThroughTable는 테스트 코드 동작을 검증하거나 보조합니다.
func TestSubjects_MapsExtensionsThroughTable(t *testing.T) {
	// 중복 확장자는 하나로 접히고 결과는 정렬되어야 한다.
	got := Subjects([]string{"jpg", "jpeg", "mp4", "pdf", "jpg"})
	want := []string{"documents", "images", "video"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestSubjects_IgnoresUnmappedExtensions는 테스트 코드 동작을 검증하거나 보조합니다.
func TestSubjects_IgnoresUnmappedExtensions(t *testing.T) {
	// 테이블에 없는 확장자는 subject를 만들지 않아야 한다.
	got := Subjects([]string{"xyz", "part", ""})
	if len(got) != 0 {
		t.Fatalf("expected no subjects, got %v", got)
	}
}

// TestSubjects_CoversEveryFamily는 테스트 코드 동작을 검증하거나 보조합니다.
func TestSubjects_CoversEveryFamily(t *testing.T) {
	// 각 패밀리 대표 확장자가 해당 subject로 매핑되어야 한다.
	tests := []struct {
		ext  string
		want string
	}{
		{"png", "images"},
		{"pdf", "documents"},
		{"xlsx", "spreadsheets"},
		{"pptx", "presentations"},
		{"mkv", "video"},
		{"flac", "audio"},
		{"zip", "archives"},
	}
	for _, tc := range tests {
		got := Subjects([]string{tc.ext})
		if len(got) != 1 || got[0] != tc.want {
			t.Fatalf("Subjects(%q): expected [%s], got %v", tc.ext, tc.want, got)
		}
	}
}
