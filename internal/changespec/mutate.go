package changespec

// MergeHookUpdates implements the merge-based update path described in
// spec §4.1: a caller that started from a possibly-stale snapshot supplies
// only the hooks it modified, keyed by command. Re-reading happens in
// internal/projectfile under the lock; this function performs the pure
// merge once the fresh on-disk ChangeSpec is in hand: commands the caller
// touched are replaced wholesale, commands it didn't touch are preserved
// untouched (picking up any concurrent writer's additions), and commands
// present only in the caller's map (newly added hooks) are appended.
func MergeHookUpdates(onDisk []HookEntry, modifiedByCommand map[string]HookEntry) []HookEntry {
	seen := make(map[string]bool, len(modifiedByCommand))
	merged := make([]HookEntry, 0, len(onDisk))

	for _, h := range onDisk {
		if updated, ok := modifiedByCommand[h.Command]; ok {
			merged = append(merged, updated)
			seen[h.Command] = true
		} else {
			merged = append(merged, h)
		}
	}

	for cmd, h := range modifiedByCommand {
		if !seen[cmd] {
			merged = append(merged, h)
		}
	}

	return merged
}
