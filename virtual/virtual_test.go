package virtual

import (
	"strconv"
	"time"
)

type task struct {
	ID    string
	Title string
}

func tasks(prefix string, n int) []task {
	out := make([]task, n)
	for i := range out {
		out[i] = task{ID: prefix + strconv.Itoa(i), Title: "Task " + strconv.Itoa(i)}
	}
	return out
}

func taskID(t task) string { return t.ID }

func renderTask(t task, _ int) string { return "<li>" + t.Title + "</li>" }

func taskOptions() Options[string, task, string] {
	return Options[string, task, string]{KeyOf: taskID, TTL: time.Minute}
}
