// Package prompt builds the system instruction sent to every provider.
//
// [Build] is a pure function of the mindset label: the same label always
// produces a byte-identical instruction, and two instructions built from
// different labels differ only where the label is embedded. [DisplayName]
// turns a raw mindset identifier such as "social_media" into the label.
package prompt
