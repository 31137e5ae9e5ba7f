package app_errors

import "errors"

var ErrLevelNotFound = errors.New("level not found")
var ErrLessonNotFound = errors.New("lesson not found")
var ErrProgressNotFound = errors.New("progress not found")
var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateLevelOrder = errors.New("level with this order already exists")
var ErrDuplicateLessonOrder = errors.New("lesson with this order already exists in the level")
var ErrInvalidOrderIndex = errors.New("order_index must start at 1")
var ErrOrderIndexGap = errors.New("order_index would leave a gap in the sequence")
var ErrInvalidContentType = errors.New("unknown content type")
var ErrNotVideoLesson = errors.New("lesson is not a video lesson")
var ErrTokenExpired = errors.New("token expired")
var ErrNotVideo = errors.New("not a video file")
var ErrFileSize = errors.New("file size error")
