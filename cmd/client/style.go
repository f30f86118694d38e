package main

import (
	"github.com/pterm/pterm"

	"github.com/cardbattle/war-server-go/internal/room"
)

func printState(snap *room.Snapshot, myID string) {
	var opponents []pterm.Panel
	var mine pterm.Panel
	for _, p := range snap.Participants {
		if p.ID == myID {
			mine = pterm.Panel{Data: printParticipantInfo(p, true)}
		} else {
			opponents = append(opponents, pterm.Panel{Data: printParticipantInfo(p, false)})
		}
	}

	board := pterm.Panel{Data: pterm.DefaultHeader.
		WithBackgroundStyle(pterm.BgGreen.ToStyle()).
		Sprintf("Room %s | %s", snap.RoomID, snap.Status)}

	dashboard := []pterm.Panel{mine}
	if snap.LastBattle != nil {
		dashboard = append(dashboard, getBattlePanel(snap, myID))
	}

	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		opponents,
		{board},
		dashboard,
	}).Render()
}

func printParticipantInfo(p room.ParticipantSnapshot, main bool) string {
	hpadding := 4
	if main {
		hpadding = 10
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(hpadding).WithTopPadding(1).WithBottomPadding(1)
	var state string
	if p.Ready {
		state = pterm.LightGreen("Ready")
	} else {
		state = pterm.LightYellow("Picking")
	}
	return pbox.WithTitle(p.Name).WithTitleTopLeft().
		Sprintf("%s\nCards in hand: %d\nCards won: %d\nGames won: %d\n", state, p.Remaining, p.Won, p.GamesWon)
}

func getBattlePanel(snap *room.Snapshot, myID string) pterm.Panel {
	b := snap.LastBattle
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)

	line := pterm.Sprintfln("%s  vs  %s", pterm.BgGreen.Sprint(b.HostCard.String()), pterm.BgGreen.Sprint(b.GuestCard.String()))
	switch {
	case b.Draw:
		line += pterm.Sprintfln("The battle was a draw")
	case b.WinnerID == myID:
		line += pterm.Sprintfln("%s", pterm.LightGreen("You took the battle"))
	default:
		line += pterm.Sprintfln("%s", pterm.LightRed("Your opponent took the battle"))
	}
	if b.Escalations > 0 {
		line += pterm.Sprintfln("War! Escalated %d time(s)", b.Escalations)
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|LAST BATTLE|")).WithTitleTopCenter().Sprint(line)}
}

func printOutcome(snap *room.Snapshot, myID string) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	var text string
	switch {
	case snap.WinnerID == "":
		text = "The game ended in a draw"
	case snap.WinnerID == myID:
		text = pterm.LightGreen("You won the game!")
	default:
		text = pterm.LightRed("Your opponent won the game")
	}
	pterm.Println(pbox.WithTitle(pterm.LightGreen("|GAME OVER|")).WithTitleTopCenter().Sprint(text))
}
