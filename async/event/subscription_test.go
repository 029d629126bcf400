// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package event

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errInts = errors.New("error in subscribeInts")

func subscribeInts(max, fail int, c chan<- int) Subscription {
	return NewSubscription(func(quit <-chan struct{}) error {
		for i := 0; i < max; i++ {
			if i >= fail {
				return errInts
			}
			select {
			case c <- i:
			case <-quit:
				return nil
			}
		}
		return nil
	})
}

func TestNewSubscriptionError(t *testing.T) {
	t.Parallel()

	channel := make(chan int)
	sub := subscribeInts(10, 2, channel)
	for i := 0; i < 2; i++ {
		require.Equal(t, i, <-channel)
	}
	select {
	case err := <-sub.Err():
		require.Equal(t, errInts, err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestNewSubscriptionUnsubscribeEarly(t *testing.T) {
	t.Parallel()

	channel := make(chan int)
	sub := subscribeInts(10, 10, channel)
	sub.Unsubscribe()

	select {
	case _, ok := <-sub.Err():
		require.False(t, ok, "error channel should be closed after Unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error channel to close")
	}
}

func TestSubscribeScope(t *testing.T) {
	t.Parallel()

	var scope SubscribeScope
	channel := make(chan int)
	sub1 := scope.Track(subscribeInts(10, 10, channel))
	sub2 := scope.Track(subscribeInts(10, 10, channel))
	require.Equal(t, 2, scope.Count())

	sub1.Unsubscribe()
	require.Equal(t, 1, scope.Count())

	scope.Close()
	require.Equal(t, 0, scope.Count())

	// Tracking after Close returns nil.
	require.Nil(t, scope.Track(subscribeInts(10, 10, channel)))
	_ = sub2
}
