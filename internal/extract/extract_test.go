package extract_test

import (
	"reflect"
	"testing"

	"github.com/phishguard/phishguard/internal/extract"
)

func TestURLs_explicitLinks(t *testing.T) {
	text := "Join at https://meet.google.com/abc-defg-hij or http://zoom.us/j/123"
	got := extract.URLs(text)
	want := []string{"https://meet.google.com/abc-defg-hij", "http://zoom.us/j/123"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("URLs: got %v, want %v", got, want)
	}
}

func TestURLs_bareDomainGetsSchemePrefix(t *testing.T) {
	got := extract.URLs("check gmeeting.org before clicking")
	want := []string{"http://gmeeting.org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("URLs: got %v, want %v", got, want)
	}
}

func TestURLs_domainInsideExplicitLinkNotDuplicated(t *testing.T) {
	got := extract.URLs("see https://meet.google.com/abc")
	want := []string{"https://meet.google.com/abc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("URLs: got %v, want %v (no bare-domain duplicate)", got, want)
	}
}

func TestURLs_deduplicated(t *testing.T) {
	got := extract.URLs("https://zoom.us/j/1 twice: https://zoom.us/j/1")
	if len(got) != 1 {
		t.Errorf("URLs: got %v, want one entry", got)
	}
}

func TestURLs_noURLs(t *testing.T) {
	if got := extract.URLs("see you at the meeting tomorrow"); len(got) != 0 {
		t.Errorf("URLs: got %v, want none", got)
	}
}

func TestURLs_mixedTextOrderPreserved(t *testing.T) {
	text := "first https://meet.google.com/a then evil-domain.tk at the end"
	got := extract.URLs(text)
	want := []string{"https://meet.google.com/a", "http://evil-domain.tk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("URLs: got %v, want %v", got, want)
	}
}
