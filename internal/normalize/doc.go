// Package normalize coerces loosely shaped input records into canonical
// catalog drafts. Set fields are deduplicated in first-seen order, hosts are
// derived from universal links, the display name is always an alias, and a
// deterministic id is synthesized when the input carries none.
package normalize
