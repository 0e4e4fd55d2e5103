package lock

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"
)

// TestConcurrentWalletSafetyProperty: for any concurrent token operations on
// the same user, the final balance matches sequential execution.
func TestConcurrentWalletSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initialBalance := rapid.Int64Range(1000, 100000).Draw(t, "initialBalance")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		amounts := make([]int64, numOps)
		expected := initialBalance
		for i := 0; i < numOps; i++ {
			amounts[i] = rapid.Int64Range(-500, 500).Draw(t, "amount")
			expected += amounts[i]
		}

		userID := fmt.Sprintf("user-%d", rapid.Int64Range(1, 1000000).Draw(t, "userID"))
		ul := NewUserLock()
		balance := initialBalance

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, amount := range amounts {
			go func(amount int64) {
				defer wg.Done()
				ul.Lock(userID)
				defer ul.Unlock(userID)
				balance += amount
			}(amount)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("balance mismatch: expected %d, got %d (initial=%d, numOps=%d)",
				expected, balance, initialBalance, numOps)
		}
	})
}

// TestWithLockSerializesProperty: WithLock serializes read-modify-write
// cycles on the same user.
func TestWithLockSerializesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initialBalance := rapid.Int64Range(1000, 100000).Draw(t, "initialBalance")
		numOps := rapid.IntRange(5, 30).Draw(t, "numOps")
		amountPerOp := rapid.Int64Range(1, 100).Draw(t, "amountPerOp")
		expected := initialBalance + int64(numOps)*amountPerOp

		userID := fmt.Sprintf("user-%d", rapid.Int64Range(1, 1000000).Draw(t, "userID"))
		ul := NewUserLock()
		balance := initialBalance

		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func() {
				defer wg.Done()
				_ = ul.WithLock(userID, func() error {
					balance += amountPerOp
					return nil
				})
			}()
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("balance mismatch with WithLock: expected %d, got %d", expected, balance)
		}
	})
}

// TestMultipleUsersIndependentLocksProperty: locks for different users never
// corrupt each other's balances.
func TestMultipleUsersIndependentLocksProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numUsers := rapid.IntRange(2, 10).Draw(t, "numUsers")
		opsPerUser := rapid.IntRange(5, 20).Draw(t, "opsPerUser")

		balances := make(map[string]*int64, numUsers)
		expected := make(map[string]int64, numUsers)
		for i := 0; i < numUsers; i++ {
			id := fmt.Sprintf("user-%d", i)
			start := rapid.Int64Range(1000, 10000).Draw(t, "initialBalance")
			b := start
			balances[id] = &b
			expected[id] = start + int64(opsPerUser)*10
		}

		ul := NewUserLock()

		var wg sync.WaitGroup
		wg.Add(numUsers * opsPerUser)
		for id := range balances {
			for j := 0; j < opsPerUser; j++ {
				go func(uid string) {
					defer wg.Done()
					ul.Lock(uid)
					defer ul.Unlock(uid)
					*balances[uid] += 10
				}(id)
			}
		}
		wg.Wait()

		for id, want := range expected {
			if *balances[id] != want {
				t.Fatalf("user %s balance mismatch: expected %d, got %d", id, want, *balances[id])
			}
		}
	})
}

// TestTryLockExclusionProperty: simultaneous TryLock attempts admit at least
// one winner and leave the lock free afterwards.
func TestTryLockExclusionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := fmt.Sprintf("user-%d", rapid.Int64Range(1, 1000000).Draw(t, "userID"))
		numAttempts := rapid.IntRange(5, 20).Draw(t, "numAttempts")

		ul := NewUserLock()

		var successCount atomic.Int32
		var wg sync.WaitGroup
		wg.Add(numAttempts)
		startCh := make(chan struct{})

		for i := 0; i < numAttempts; i++ {
			go func() {
				defer wg.Done()
				<-startCh

				if ul.TryLock(userID) {
					successCount.Add(1)
					ul.Unlock(userID)
				}
			}()
		}

		close(startCh)
		wg.Wait()

		if successCount.Load() < 1 {
			t.Fatalf("at least one TryLock should succeed, got %d successes", successCount.Load())
		}
		if !ul.TryLock(userID) {
			t.Fatal("lock should be available after all attempts complete")
		}
		ul.Unlock(userID)
	})
}

// TestLockUnlockSymmetryProperty: symmetric lock/unlock cycles leave the
// lock free.
func TestLockUnlockSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := fmt.Sprintf("user-%d", rapid.Int64Range(1, 1000000).Draw(t, "userID"))
		numCycles := rapid.IntRange(1, 50).Draw(t, "numCycles")

		ul := NewUserLock()
		for i := 0; i < numCycles; i++ {
			ul.Lock(userID)
			ul.Unlock(userID)
		}

		if !ul.TryLock(userID) {
			t.Fatal("lock should be available after symmetric lock/unlock cycles")
		}
		ul.Unlock(userID)
	})
}
