// Package profile provides named, ready-made pipeline configurations and
// loads their parameters from YAML files and PLAINLOG_ environment
// variables. A profile is applied to a fresh Core owned by the caller;
// nothing is configured at import time.
package profile
