package plc

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TaskSetting mirrors the task_setting block of the general configuration
// file. In the original system these values were parsed but never wired
// into task execution; here they are surfaced as scheduler-wide defaults
// (see WithMaxWorkTimeForNotCycleTask and Plc's idle-sleep behavior in Run).
type TaskSetting struct {
	// MaxWorkTimeForNotCycleTask is, in milliseconds in the YAML file, the
	// fallback overrun deadline applied to background and edge-triggered
	// tasks, which have no period of their own to measure against.
	MaxWorkTimeForNotCycleTask time.Duration `yaml:"max_work_time_for_not_cycle_task"`

	// ReturnTimeWork is, in milliseconds in the YAML file, how long Run
	// sleeps before re-polling the call stack when no task was ready on a
	// tick, so a fully idle scheduler does not spin.
	ReturnTimeWork time.Duration `yaml:"return_time_work"`
}

// Config is the top-level shape of the general configuration file.
type Config struct {
	General General `yaml:"general"`
}

// General holds the non-Modbus-specific settings of the configuration file.
type General struct {
	TaskSetting TaskSetting `yaml:"task_setting"`
}

// configFile is the literal YAML shape: durations are expressed in plain
// milliseconds on disk, and converted to time.Duration after unmarshaling.
type configFile struct {
	General struct {
		TaskSetting struct {
			MaxWorkTimeForNotCycleTask int64 `yaml:"max_work_time_for_not_cycle_task"`
			ReturnTimeWork             int64 `yaml:"return_time_work"`
		} `yaml:"task_setting"`
	} `yaml:"general"`
}

// LoadConfig reads and validates the general configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigInvalidError{Path: path, Cause: err}
	}

	var raw configFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, &ConfigInvalidError{Path: path, Cause: err}
	}

	ts := raw.General.TaskSetting
	if ts.MaxWorkTimeForNotCycleTask < 0 || ts.ReturnTimeWork < 0 {
		return Config{}, &ConfigInvalidError{Path: path, Cause: WrapError("task_setting", errNegativeDuration)}
	}

	return Config{
		General: General{
			TaskSetting: TaskSetting{
				MaxWorkTimeForNotCycleTask: time.Duration(ts.MaxWorkTimeForNotCycleTask) * time.Millisecond,
				ReturnTimeWork:             time.Duration(ts.ReturnTimeWork) * time.Millisecond,
			},
		},
	}, nil
}

var errNegativeDuration = negativeDurationError{}

type negativeDurationError struct{}

func (negativeDurationError) Error() string { return "duration fields must not be negative" }
