package utils

// TimeFormat is the timestamp layout of log lines.
const TimeFormat = "2006-01-02 15:04:05.000"
