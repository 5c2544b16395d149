package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray 字符串数组类型，用于存储 hashtags、platforms 等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	data, ok, err := scanJSONBytes(value)
	if err != nil || !ok {
		*s = StringArray{}
		return err
	}
	return json.Unmarshal(data, s)
}

// PlatformResult 单个平台的发布结果
type PlatformResult struct {
	Success     bool       `json:"success"`
	Error       string     `json:"error,omitempty"`
	ExternalID  string     `json:"external_id,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// PlatformResults 平台 -> 发布结果
type PlatformResults map[string]PlatformResult

// Value 实现 driver.Valuer 接口
func (r PlatformResults) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]PlatformResult(r))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan 实现 sql.Scanner 接口
func (r *PlatformResults) Scan(value interface{}) error {
	data, ok, err := scanJSONBytes(value)
	if err != nil || !ok {
		*r = PlatformResults{}
		return err
	}
	return json.Unmarshal(data, r)
}

// Succeeded 平台是否已成功发布
func (r PlatformResults) Succeeded(platform string) bool {
	result, ok := r[platform]
	return ok && result.Success
}

// Clone 复制结果，避免共享底层 map
func (r PlatformResults) Clone() PlatformResults {
	cloned := make(PlatformResults, len(r))
	for platform, result := range r {
		cloned[platform] = result
	}
	return cloned
}

func scanJSONBytes(value interface{}) ([]byte, bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		if len(v) == 0 {
			return nil, false, nil
		}
		return v, true, nil
	case string:
		if v == "" {
			return nil, false, nil
		}
		return []byte(v), true, nil
	default:
		return nil, false, fmt.Errorf("unsupported json column type %T", value)
	}
}
