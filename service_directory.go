package account

import "context"

// GetAllUsers subscribes to the directory and maps every snapshot to a
// Success. A store failure is sent once as an Error and ends the stream;
// there is no automatic resubscription. The subscription is released when
// ctx is done.
func (s *Service) GetAllUsers(ctx context.Context) <-chan Result[[]User] {
	out := make(chan Result[[]User])
	snapshots := s.directory.ObserveAll(ctx)

	go func() {
		defer close(out)
		for {
			var (
				snap DirectorySnapshot
				ok   bool
			)
			select {
			case <-ctx.Done():
				return
			case snap, ok = <-snapshots:
				if !ok {
					return
				}
			}

			res := Success(snap.Users)
			if snap.Err != nil {
				res = Failure[[]User](DirectoryError(snap.Err, MsgDirectoryFallback))
			} else if snap.Skipped > 0 {
				s.logger.Debug("directory snapshot skipped malformed records", "skipped", snap.Skipped)
			}

			select {
			case <-ctx.Done():
				return
			case out <- res:
			}

			if snap.Err != nil {
				return
			}
		}
	}()

	return out
}

// GetUser reads a single profile from the directory.
func (s *Service) GetUser(ctx context.Context, id string) Result[*User] {
	user, err := s.directory.GetByID(ctx, id)
	if err != nil {
		return Failure[*User](DirectoryError(err, MsgReloadEmpty))
	}
	if user == nil {
		return Failure[*User](NotFoundError(MsgUserUnknown))
	}
	return Success(user)
}

// UpdateProfile writes user into the directory.
func (s *Service) UpdateProfile(ctx context.Context, user User) Result[struct{}] {
	if isBlank(user.ID) {
		return Failure[struct{}](ValidationError(MsgUserUnknown))
	}
	if err := s.directory.Upsert(ctx, user); err != nil {
		return Failure[struct{}](DirectoryError(err, MsgUpdateFailed))
	}
	return Success(struct{}{})
}
