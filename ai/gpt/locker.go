package gpt

import "sync"

// LockThreads serializes work per user so one thread never runs twice at once.
type LockThreads struct {
	mutex   sync.Mutex
	threads map[string]*sync.Mutex
}

func NewLockThreads() *LockThreads {
	return &LockThreads{threads: make(map[string]*sync.Mutex)}
}

func (l *LockThreads) Lock(userId string) {
	l.mutex.Lock()

	mutex, exists := l.threads[userId]
	if !exists {
		mutex = &sync.Mutex{}
		l.threads[userId] = mutex
	}

	l.mutex.Unlock()

	mutex.Lock()
}

func (l *LockThreads) Unlock(userId string) {
	l.mutex.Lock()
	mutex, exists := l.threads[userId]
	l.mutex.Unlock()

	if exists {
		mutex.Unlock()
	}
}
