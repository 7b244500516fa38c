// Package schema locates and loads the option schema of a command.
//
// A command without a schema takes no structured options; Load reports that
// as a nil schema rather than an error. A schema that exists but cannot be
// decoded is a FAIL_READ_OPTION usage error.
//
// Schema files live at {root}/{command}.yaml (also .yml and .json):
//
//	info: Initialize a repo
//	usage: "{{name}} init [--force]"
//	shorthands:
//	  f: force
//	options:
//	  force:
//	    type: boolean
//	    info: override existing files
//	  retry:
//	    type: number
//	    default: 0
//	    max: 9
//
// Options keep their declaration order. The min, max, enum, pattern and
// required keys compile into the field's validator.
package schema
